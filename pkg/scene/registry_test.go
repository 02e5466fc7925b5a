package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "complete_metadata.json",
			content: `{"name": "Glow Box", "description": "Box with a glowing panel", "group": "Experiments", "shapes": []}`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Glow Box",
				DisplayName: "Glow Box",
				Description: "Box with a glowing panel",
				Group:       "Experiments",
				Type:        "file",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"shapes": []}`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("Failed to write scene file: %v", err)
			}

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": `), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseSceneMetadata(path); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestListFileScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListFileScenes(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Errorf("ListFileScenes() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.json"), []byte(`{"group": "Mine"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}
	if response.Groups[0].Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", response.Groups[0].Name)
	}
	if response.Groups[1].Name != "Mine" || response.Groups[1].Scenes[0].ID != "file:mine" {
		t.Errorf("Unexpected file group %+v", response.Groups[1])
	}

	expectedScenes := []string{"default", "cornell-box", "sphere-grid", "triangle-meshes", "empty"}
	if len(response.Groups[0].Scenes) != len(expectedScenes) {
		t.Fatalf("Built-in scenes count = %d, want %d", len(response.Groups[0].Scenes), len(expectedScenes))
	}
	for i, id := range expectedScenes {
		if got := response.Groups[0].Scenes[i].ID; got != id {
			t.Errorf("Built-in scene %d = %q, want %q", i, got, id)
		}
	}
}

func TestBuiltin(t *testing.T) {
	for _, info := range BuiltinScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Builtin(info.ID)
			if err != nil {
				t.Fatalf("Builtin(%q) error: %v", info.ID, err)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Built-in scene %q is invalid: %v", info.ID, err)
			}
			if s.Camera.Width <= 0 || s.Camera.AspectRatio <= 0 {
				t.Errorf("Built-in scene %q has unusable camera %+v", info.ID, s.Camera)
			}
		})
	}

	if _, err := Builtin("nope"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestIsFileScene(t *testing.T) {
	if name, ok := IsFileScene("file:glow"); !ok || name != "glow" {
		t.Errorf("Expected file scene glow, got %q %v", name, ok)
	}
	if _, ok := IsFileScene("default"); ok {
		t.Error("Built-in id reported as file scene")
	}
}
