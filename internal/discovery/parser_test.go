package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParser_FindTestCases(t *testing.T) {
	parser := NewParser()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "lib.rs")
	content := `pub fn add(a: i32, b: i32) -> i32 { a + b }

#[cfg(test)]
mod tests {
    use super::*;

    #[test]
    fn it_adds() {
        assert_eq!(add(1, 2), 3);
    }

    #[test]
    #[should_panic(expected = "overflow")]
    fn it_panics() {
        panic!("overflow");
    }

    #[tokio::test(flavor = "multi_thread")]
    async fn it_connects() {}

    #[test]
    // flaky on windows
    #[ignore]
    pub fn it_is_ignored() {}

    fn helper() {}
}
`
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Run("finds test functions", func(t *testing.T) {
		testCases, err := parser.FindTestCases(testFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{"it_adds", "it_connects", "it_is_ignored", "it_panics"}
		if len(testCases) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, testCases)
		}
		for i := range expected {
			if testCases[i] != expected[i] {
				t.Errorf("expected %s at %d, got %s", expected[i], i, testCases[i])
			}
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := parser.FindTestCases("/non/existent/file.rs")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestParser_FindPackageTestCases(t *testing.T) {
	parser := NewParser()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src/lib.rs"), "#[test]\nfn unit() {}\n")
	writeFile(t, filepath.Join(dir, "src/util.rs"), "pub fn nothing() {}\n")
	writeFile(t, filepath.Join(dir, "tests/api.rs"), "#[test]\nfn integration() {}\n")

	files, err := parser.FindPackageTestCases(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files with tests, got %+v", files)
	}
	if files[1].Cases[0] != "integration" {
		t.Errorf("expected integration test, got %v", files[1].Cases)
	}
}
