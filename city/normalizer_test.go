package city

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(NewReference())
}

func TestNormalize_BasicFolding(t *testing.T) {
	n := newTestNormalizer()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "ЯКУТСК", "якутск"},
		{"folds yo", "ё-variant", "е-variant"},
		{"trims", "  якутск  ", "якутск"},
		{"collapses whitespace", "якутск   город", "якутск город"},
		{"strips г. prefix", "г. Якутск", "якутск"},
		{"strips город prefix", "город Якутск", "якутск"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.in))
		})
	}
}

func TestNormalize_AirportResolution(t *testing.T) {
	n := newTestNormalizer()

	key, ok := n.Accept("Туймаада")
	require.True(t, ok)
	assert.Equal(t, "якутск", key)
}

func TestNormalize_SuburbResolution(t *testing.T) {
	n := newTestNormalizer()

	key, ok := n.Accept("Хатассы")
	require.True(t, ok)
	assert.Equal(t, "якутск", key)
}

func TestNormalize_UnknownRejected(t *testing.T) {
	n := newTestNormalizer()

	_, ok := n.Accept("Нью-Йорк")
	assert.False(t, ok)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{"ЯКУТСК", "  г. Верхоянск ", "Туймаада", "ё ЁЁё", "Хатассы"}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		assert.Equal(t, once, twice, "normalize(normalize(%q)) must equal normalize(%q)", in, in)
	}
}

func TestVirtualStopID_StableAcrossCaseAndYoVariants(t *testing.T) {
	n := newTestNormalizer()

	a := VirtualStopID(n.Normalize("Верхоянск"))
	b := VirtualStopID(n.Normalize("верхоянск"))
	c := VirtualStopID(n.Normalize("ВЕРХОЯНСК"))

	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
	assert.Equal(t, "virtual-stop-верхоянск", a)
}

func TestVirtualRouteID_Deterministic(t *testing.T) {
	a := VirtualRouteID("virtual-stop-якутск", "virtual-stop-верхоянск")
	b := VirtualRouteID("virtual-stop-якутск", "virtual-stop-верхоянск")
	assert.Equal(t, a, b)
	assert.Equal(t, "virtual-route-virtual-stop-якутск-virtual-stop-верхоянск", a)
}
