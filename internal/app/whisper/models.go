package whisper

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// validFamilies is the allow-list of recognized model family names. Artifact
// files outside these families (quantized test dumps, tokenizer files) are
// not selectable.
var validFamilies = []string{"base", "small", "medium", "large", "large-V3"}

// testFixtureTag marks artifacts shipped for the recognizer's own test suite.
const testFixtureTag = "for-tests"

// ListLocalModels scans the model directory and returns the usable model ids,
// de-duplicated, in directory order. A directory without matching artifacts
// yields an empty list, not an error.
func ListLocalModels(modelDir string) ([]string, error) {
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		return nil, fmt.Errorf("read model directory %s: %w", modelDir, err)
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, artifactExt) {
			return "", false
		}
		if strings.Contains(name, testFixtureTag) {
			return "", false
		}

		id := strings.TrimSuffix(strings.TrimPrefix(name, artifactPrefix), artifactExt)
		matches := lo.SomeBy(validFamilies, func(family string) bool {
			return strings.Contains(id, family)
		})
		return id, matches
	})

	return lo.Uniq(names), nil
}
