package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		want   Kind
	}{
		{"npm", KindNpm},
		{"cargo", KindCargo},
		{"github", KindGithub},
		{"vfox", KindVfox},
		{"bogus", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseKind(tt.prefix))
	}
}

func TestRef_Key(t *testing.T) {
	t.Parallel()

	r := Ref{Backend: KindNpm, Name: "eslint"}
	assert.Equal(t, "npm:eslint", r.Key())
	assert.Equal(t, r.Key(), r.String())
}
