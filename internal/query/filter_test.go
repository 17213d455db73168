package query

import (
	"testing"

	"github.com/d2vault/d2vault/internal/d2s"
	"github.com/d2vault/d2vault/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSave() *d2s.Save {
	s := &d2s.Save{
		Name:  "Tal\xEFa",
		Class: 1,
		Level: 85,
		Flags: d2s.FlagExpansion | d2s.FlagHardcore,
	}
	s.Stats.Strength = 156
	s.Stats.Experience = 1_145_236_814
	s.Stats.Gold = 850_000
	s.Stats.GoldBank = 2_500_000
	s.Items.Items = []*item.Item{{Code: "rin"}, {Code: "amu"}}
	s.Items.Errors = 1
	s.Merc.Seed = 42
	return s
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{`level >= 80`, true},
		{`level > 85`, false},
		{`class == "Sorceress" && hardcore`, true},
		{`class == "Sorceress" && !expansion`, false},
		{`name == "Talïa"`, true},
		{`name =~ "^Tal"`, true},
		{`experience > 1000000000 && stash >= 2500000`, true},
		{`gold + stash > 4000000`, false},
		{`items == 2 && item_errors > 0`, true},
		{`merc && !golem && !died`, true},
		{`strength / 2 == 78`, true},
	}
	s := sampleSave()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := f.Match(s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{
		`level >=`,
		`mana > 10`,
		`(level > 1`,
	} {
		_, err := Compile(expr)
		assert.Error(t, err, expr)
	}
}

func TestFilter_NonBoolean(t *testing.T) {
	f, err := Compile(`level + 1`)
	require.NoError(t, err)

	_, err = f.Match(sampleSave())
	assert.ErrorContains(t, err, "want bool")
}

func TestParams(t *testing.T) {
	names := Params()
	assert.Contains(t, names, "item_errors")
	assert.Len(t, names, 17)
	assert.IsIncreasing(t, names)
}
