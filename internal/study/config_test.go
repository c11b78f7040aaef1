package study

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

const sampleYAML = `
participant: P01
methodOrder: [filter, search]
trials:
  search:
    - {id: 10, targetId: 2, prompt: "Find bread", phase: training}
    - {id: 11, targetId: 4, prompt: "Find tomatoes"}
  filter:
    - {id: 20, targetId: 1, prompt: "Find fruit within 2 km", phase: training}
    - {id: 21, targetId: 3, prompt: "Find vegan food", phase: main}
    - {id: 22, targetId: 4, prompt: "Find vegetables", phase: main}
`

func TestParseConfigPlanOrder(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "P01", cfg.Participant)

	trials, boundaries, err := cfg.Plan()
	require.NoError(t, err)

	var gotIDs []int
	for _, tr := range trials {
		gotIDs = append(gotIDs, tr.ID)
	}
	assert.Equal(t, []int{20, 21, 22, 10, 11}, gotIDs)
	assert.Equal(t, []int{3}, boundaries)

	assert.Equal(t, domain.MethodFilter, trials[0].Method)
	assert.Equal(t, domain.PhaseTraining, trials[0].Phase)
	assert.Equal(t, domain.MethodSearch, trials[4].Method)
	assert.Equal(t, domain.PhaseMain, trials[4].Phase, "phase defaults to main")
}

func TestParseConfigJSON(t *testing.T) {
	doc := `{"participant":"P02","methodOrder":["search"],"trials":{"search":[{"id":1,"targetId":2,"prompt":"p","phase":"main"}]}}`
	cfg, err := ParseConfig([]byte(doc))
	require.NoError(t, err)
	trials, boundaries, err := cfg.Plan()
	require.NoError(t, err)
	assert.Len(t, trials, 1)
	assert.Empty(t, boundaries)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate(catalogIDs))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty method order", Config{}},
		{"unknown method", Config{
			MethodOrder: []domain.Method{"browse"},
			Trials:      map[domain.Method][]TrialConfig{"browse": {{ID: 1, TargetID: 1}}},
		}},
		{"duplicate method", Config{
			MethodOrder: []domain.Method{domain.MethodSearch, domain.MethodSearch},
			Trials:      map[domain.Method][]TrialConfig{domain.MethodSearch: {{ID: 1, TargetID: 1}}},
		}},
		{"method without trials", Config{
			MethodOrder: []domain.Method{domain.MethodSearch, domain.MethodFilter},
			Trials:      map[domain.Method][]TrialConfig{domain.MethodSearch: {{ID: 1, TargetID: 1}}},
		}},
		{"undeclared method", Config{
			MethodOrder: []domain.Method{domain.MethodSearch},
			Trials: map[domain.Method][]TrialConfig{
				domain.MethodSearch: {{ID: 1, TargetID: 1}},
				domain.MethodFilter: {{ID: 2, TargetID: 1}},
			},
		}},
		{"duplicate trial id", Config{
			MethodOrder: []domain.Method{domain.MethodSearch},
			Trials:      map[domain.Method][]TrialConfig{domain.MethodSearch: {{ID: 1, TargetID: 1}, {ID: 1, TargetID: 2}}},
		}},
		{"bad phase", Config{
			MethodOrder: []domain.Method{domain.MethodSearch},
			Trials:      map[domain.Method][]TrialConfig{domain.MethodSearch: {{ID: 1, TargetID: 1, Phase: "warmup"}}},
		}},
		{"target not in catalog", Config{
			MethodOrder: []domain.Method{domain.MethodSearch},
			Trials:      map[domain.Method][]TrialConfig{domain.MethodSearch: {{ID: 1, TargetID: 99}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(catalogIDs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestNewSequencerFailsFastOnMissingTarget(t *testing.T) {
	cfg := twoMethodConfig()
	cfg.Trials[domain.MethodFilter][1].TargetID = 42

	s, err := NewSequencer(cfg, catalogIDs, Options{})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrConfiguration)
}
