package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

func TestNormalizeUser(t *testing.T) {
	inst := reconcile.DefaultInstitution()

	tests := []struct {
		in, want string
	}{
		{`onid\bob`, "bob@oregonstate.edu"},
		{`ONID\Bob`, "bob@oregonstate.edu"},
		{"Bob@onid.oregonstate.edu", "bob@oregonstate.edu"},
		{"bob@onid.orst.edu", "bob@oregonstate.edu"},
		{"Bob@OregonState.edu", "bob@oregonstate.edu"},
		{`campus\bob`, `campus\bob`},
		{`onid\`, ""},
		{"  ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, inst.NormalizeUser(tt.in))
		})
	}
}

func TestIsStudent(t *testing.T) {
	rule := reconcile.IsStudent("major")
	assert.True(t, rule(assets.User{DefaultAccountName: "Computer Science MAJOR"}))
	assert.False(t, rule(assets.User{DefaultAccountName: "Information Services"}))
	assert.False(t, reconcile.IsStudent("")(assets.User{DefaultAccountName: "Major"}))
}

func TestDirectoryLookup(t *testing.T) {
	dir := reconcile.NewDirectory([]assets.User{
		{UID: "first", PrimaryEmail: "dup@oregonstate.edu"},
		{UID: "second", AlertEmail: "dup@oregonstate.edu"},
	})

	u, ok := dir.Lookup("DUP@oregonstate.edu")
	assert.True(t, ok)
	assert.Equal(t, "first", u.UID, "first match wins")

	_, ok = dir.Lookup("")
	assert.False(t, ok)

	var nilDir *reconcile.Directory
	_, ok = nilDir.Lookup("dup@oregonstate.edu")
	assert.False(t, ok)
}
