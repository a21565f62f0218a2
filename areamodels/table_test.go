package areamodels

import (
	"strings"
	"testing"

	"github.com/bfp-analytics/go-firecast/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected string
	}{
		"plain":       {"Poblacion", "poblacion"},
		"diacritics":  {"New Zañiga", "new zaniga"},
		"hyphen":      {"Wack-Wack  Greenhills", "wack wack greenhills"},
		"padding":     {"  San   Jose ", "san jose"},
		"upper":       {"PAG-ASA", "pag asa"},
		"punctuation": {"Mabini J. Rizal", "mabini j. rizal"},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Normalize(td.input))
		})
	}
}

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	require.Nil(t, err)
	assert.Equal(t, 27, tbl.Len())

	again, err := Default()
	require.Nil(t, err)
	assert.Same(t, tbl, again)

	names := tbl.Names()
	require.Len(t, names, 27)
	assert.Equal(t, "Addition Hills", names[0])
	assert.Equal(t, "Wack-Wack Greenhills", names[len(names)-1])

	assert.Equal(t, models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12), tbl.DefaultSpec())
}

func TestLookup(t *testing.T) {
	tbl, err := Default()
	require.Nil(t, err)

	testData := map[string]struct {
		input     string
		canonical string
		spec      models.Spec
		isDefault bool
	}{
		"exact": {
			input:     "Addition Hills",
			canonical: "Addition Hills",
			spec:      models.SeasonalSpec(2, 0, 1, 0, 1, 1, 12),
		},
		"case insensitive": {
			input:     "burol",
			canonical: "Burol",
			spec:      models.SeasonalSpec(1, 0, 1, 1, 0, 1, 12),
		},
		"alias": {
			input:     "Hagdan Bato Itaas",
			canonical: "Hagdang Bato Itaas",
			spec:      models.SeasonalSpec(1, 0, 1, 1, 0, 1, 12),
		},
		"without diacritics": {
			input:     "old zaniga",
			canonical: "Old Zañiga",
			spec:      models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12),
		},
		"hyphen variant": {
			input:     "Wack-wack Greenhills",
			canonical: "Wack-Wack Greenhills",
			spec:      models.SeasonalSpec(2, 0, 1, 0, 1, 1, 12),
		},
		"unknown falls back": {
			input:     "Nowhere",
			canonical: "Nowhere",
			spec:      models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12),
			isDefault: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			// second lookup is served from the memo
			for i := 0; i < 2; i++ {
				m := tbl.Lookup(td.input)
				assert.Equal(t, td.canonical, m.Name)
				assert.Equal(t, td.spec, m.Spec)
				assert.Equal(t, td.isDefault, m.Default)
			}
		})
	}
}

func TestLookupIsImmutable(t *testing.T) {
	tbl, err := Default()
	require.Nil(t, err)

	m := tbl.Lookup("Vergara")
	m.Spec.Seasonal.P = 5
	m.Spec.Order.P = 5

	again := tbl.Lookup("Vergara")
	assert.Equal(t, models.SeasonalSpec(2, 0, 1, 0, 1, 1, 12), again.Spec)

	e, ok := tbl.Entry("hagdan bato libis")
	require.True(t, ok)
	assert.Equal(t, "Hagdang Bato Libis", e.Name)
	assert.Equal(t, []string{"Hagdan Bato Libis"}, e.Aliases)

	_, ok = tbl.Entry("Nowhere")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	testData := map[string]struct {
		doc string
		err error
	}{
		"plain default": {
			doc: "default:\n  order: [0, 1, 1]\nareas:\n  - name: A\n    order: [1, 0, 0]\n",
		},
		"bad yaml": {
			doc: "default: [",
			err: ErrInvalidTable,
		},
		"short order": {
			doc: "default:\n  order: [1, 1]\n",
			err: ErrInvalidTable,
		},
		"short seasonal order": {
			doc: "default:\n  order: [1, 1, 1]\n  seasonal_order: [1, 0, 1]\n",
			err: ErrInvalidTable,
		},
		"invalid order": {
			doc: "default:\n  order: [1, 1, 1]\nareas:\n  - name: A\n    order: [-1, 0, 0]\n",
			err: models.ErrInvalidOrder,
		},
		"missing name": {
			doc: "default:\n  order: [1, 1, 1]\nareas:\n  - order: [1, 0, 0]\n",
			err: ErrInvalidTable,
		},
		"duplicate after folding": {
			doc: "default:\n  order: [1, 1, 1]\nareas:\n  - name: Zañiga\n    order: [1, 0, 0]\n  - name: zaniga\n    order: [1, 0, 0]\n",
			err: ErrDuplicate,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tbl, err := Load(strings.NewReader(td.doc))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, 1, tbl.Len())
			assert.Equal(t, models.ARIMASpec(0, 1, 1), tbl.DefaultSpec())
			assert.Equal(t, models.ARIMASpec(1, 0, 0), tbl.Lookup("a").Spec)
		})
	}
}
