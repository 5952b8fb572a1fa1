package embedding

import (
	"strings"
	"testing"

	"github.com/summitchronicles/summit-tracker/internal/insight"
	"github.com/summitchronicles/summit-tracker/internal/ptr"
)

func TestBuildChunk_allFields(t *testing.T) {
	point := insight.DataPoint{
		Date:     "2025-09-08",
		Type:     insight.TypeManual,
		Activity: "hiking",
		Metrics: insight.Metrics{
			Duration:       ptr.Ref(240.0),
			Volume:         ptr.Ref(14.0),
			Intensity:      ptr.Ref(7.0),
			Elevation:      ptr.Ref(900.0),
			BackpackWeight: ptr.Ref(18.0),
		},
		Context: insight.Context{
			Phase:    ptr.Ref("build"),
			Location: ptr.Ref("Mount Si"),
			Notes:    ptr.Ref("felt good"),
		},
	}

	got := buildChunk(point).content
	want := "Training Session: hiking on 2025-09-08\n" +
		"Type: manual\n" +
		"Duration: 240 minutes\n" +
		"Volume: 14 km distance\n" +
		"Intensity: 7/10 RPE\n" +
		"Elevation gain: 900m\n" +
		"Backpack weight: 18kg\n" +
		"Training phase: build\n" +
		"Location/Type: Mount Si\n" +
		"Notes: felt good\n"
	if got != want {
		t.Errorf("chunk content mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildChunk_omitsAbsentFields(t *testing.T) {
	point := insight.DataPoint{
		Date:     "2025-09-08",
		Type:     insight.TypeStrength,
		Activity: "Strength",
		Metrics:  insight.Metrics{Volume: ptr.Ref(1300.0)},
	}

	got := buildChunk(point).content
	if !strings.Contains(got, "Volume: 1300 kg total volume\n") {
		t.Errorf("expected strength volume line with kg unit, got:\n%s", got)
	}
	for _, absent := range []string{"Duration:", "Intensity:", "Elevation", "Backpack", "phase", "Location", "Notes:"} {
		if strings.Contains(got, absent) {
			t.Errorf("unexpected %q line in:\n%s", absent, got)
		}
	}
}

func TestBuildChunk_metadataTags(t *testing.T) {
	c := buildChunk(insight.DataPoint{Date: "2025-09-08", Type: insight.TypeCardio, Activity: "Morning Run"})
	if c.metadata["source"] != "training_data" {
		t.Errorf("metadata source = %v", c.metadata["source"])
	}
	if c.metadata["activity"] != "Morning Run" {
		t.Errorf("metadata activity = %v", c.metadata["activity"])
	}
}
