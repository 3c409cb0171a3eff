// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionOf(t *testing.T) {
	tests := []struct {
		name string
		want Direction
	}{
		{name: "negator.txt", want: DirectionPre},
		{name: "negator.post.txt", want: DirectionPost},
		{name: "NEGATOR.POST.TXT", want: DirectionPost},
		{name: "builtin:speculation.post.txt", want: DirectionPost},
		{name: "/etc/semex/dictionaries/negator.post.txt", want: DirectionPost},
		{name: "/data/post.d/negator.txt", want: DirectionPre},
		{name: "post.txt", want: DirectionPre},
		{name: "negator.local.txt", want: DirectionPre},
		{name: "", want: DirectionPre},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectionOf(tt.name))
		})
	}
}

func TestRoleIsScoped(t *testing.T) {
	var scoped []Role
	for _, r := range AllRoles {
		if r.IsScoped() {
			scoped = append(scoped, r)
		}
	}
	assert.ElementsMatch(t, []Role{RoleNegator, RoleSpeculation, RoleConfirmer}, scoped)
}
