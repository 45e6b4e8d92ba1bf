package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadsForTagsAlwaysIncludesCommon(t *testing.T) {
	out := PayloadsForTags(nil)
	assert.Contains(t, out, "/admin")
	assert.Contains(t, out, "/.env")
}

func TestPayloadsForTagsAddsTechSpecific(t *testing.T) {
	out := PayloadsForTags([]string{"wordpress"})
	assert.Contains(t, out, "/wp-login.php")
	assert.Contains(t, out, "/admin")
}

func TestPayloadsForTagsDeduplicatesAndSorts(t *testing.T) {
	out := PayloadsForTags([]string{"wordpress", "drupal"})
	seen := map[string]bool{}
	for i, p := range out {
		assert.False(t, seen[p], "duplicate payload %s", p)
		seen[p] = true
		if i > 0 {
			assert.LessOrEqual(t, out[i-1], out[i])
		}
	}
}

func TestAllPayloadsCoversEveryWordlist(t *testing.T) {
	out := AllPayloads()
	assert.Contains(t, out, "/wp-login.php")
	assert.Contains(t, out, "/actuator/health")
	assert.Contains(t, out, "/jmx-console")
}
