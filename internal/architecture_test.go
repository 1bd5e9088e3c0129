package internal

import (
	"testing"

	"github.com/kcmvp/archunit"
)

func TestCoreDoesNotDependOnUI(t *testing.T) {
	ui := archunit.Packages("tui", []string{".../internal/tui/..."})
	for _, name := range []string{"api", "config", "coordinator", "discovery", "models"} {
		layer := archunit.Packages(name, []string{".../internal/" + name})
		if err := layer.ShouldNotReferLayers(ui); err != nil {
			t.Errorf("Architecture violation: %s depends on the UI: %v", name, err)
		}
	}
}

func TestModelsStayLeaf(t *testing.T) {
	models := archunit.Packages("models", []string{".../internal/models"})
	api := archunit.Packages("api", []string{".../internal/api"})

	if len(models.Packages()) == 0 {
		t.Fatal("No models package found")
	}
	if err := models.ShouldNotReferLayers(api); err != nil {
		t.Errorf("Architecture violation: models depends on api: %v", err)
	}
}
