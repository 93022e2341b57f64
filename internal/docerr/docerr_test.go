package docerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels(t *testing.T) {
	parse := StructuralParse("init.lua", 12, "malformed @param %q", "x")
	assert.True(t, errors.Is(parse, ErrStructuralParse))
	assert.Contains(t, parse.Error(), "init.lua:12")
	assert.True(t, IsRecoverable(parse))
	assert.True(t, IsRecoverable(fmt.Errorf("wrapped: %w", parse)))

	boundary := BoundaryNotFound("README.md", "start", "^<!-- API -->$")
	assert.True(t, errors.Is(boundary, ErrBoundaryNotFound))
	assert.False(t, IsRecoverable(boundary))

	assert.True(t, errors.Is(LinkTargetMissing("README.md", "missing.md#x", "file not found"), ErrLinkTargetMissing))
	assert.True(t, errors.Is(RenderInconsistency("action", "select", "desc"), ErrRenderInconsistency))
}
