package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		expected string
	}{
		{name: "address2", raw: "101 Wilson Lane", expected: "68086943237164982734333428280784300550565381723532936263016368251445461241953"},
		{name: "zip", raw: "87121", expected: "87121"},
		{name: "city", raw: "SLC", expected: "101327353979588246869873249766058188995681113722618593621043638294296500696424"},
		{name: "Empty", raw: "", expected: "102987336249554097029535212322581322789799900648198034993379397001115665086549"},
		{name: "Null", raw: nil, expected: "99769404535520360775991420569103450442789945655240760487761322098828903685777"},
		{name: "bool True", raw: true, expected: "1"},
		{name: "str True", raw: "True", expected: "27471875274925838976481193902417661171675582237244292940724984695988062543640"},
		{name: "max i32", raw: 2147483647, expected: "2147483647"},
		{name: "max i32 + 1", raw: 2147483648, expected: "26221484005389514539852548961319751347124425277437769688639924217837557266135"},
		{name: "min i32", raw: -2147483648, expected: "-2147483648"},
		{name: "float 0.0", raw: 0.0, expected: "62838607218564353630028473473939957328943626306458686867332534889076311281879"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, EncodeValue(tt.raw))
		})
	}
}

func TestIndyCredentialValues(t *testing.T) {
	vals := IndyCredentialValues{}
	vals.Add("First Name", "Alice")
	vals.Add("age", 28)

	v, ok := vals.Get("firstname")
	require.True(t, ok)
	require.Equal(t, "Alice", v.Raw)
	require.Equal(t, EncodeValue("Alice"), v.Encoded)

	v, ok = vals.Get("age")
	require.True(t, ok)
	require.Equal(t, "28", v.Raw)
	require.Equal(t, "28", v.Encoded)

	_, ok = vals.Get("missing")
	require.False(t, ok)
}

func TestNonRevokedInterval(t *testing.T) {
	from, to := int64(100), int64(200)

	tests := []struct {
		name     string
		interval NonRevokedInterval
		ts       int64
		expected bool
	}{
		{"inside", NonRevokedInterval{From: &from, To: &to}, 150, true},
		{"lower bound", NonRevokedInterval{From: &from, To: &to}, 100, true},
		{"upper bound", NonRevokedInterval{From: &from, To: &to}, 200, true},
		{"before", NonRevokedInterval{From: &from, To: &to}, 99, false},
		{"after", NonRevokedInterval{From: &from, To: &to}, 201, false},
		{"open start", NonRevokedInterval{To: &to}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.interval.Contains(tt.ts))
		})
	}

	global := &NonRevokedInterval{To: &to}
	local := &NonRevokedInterval{From: &from}
	require.Equal(t, local, Effective(global, local))
	require.Equal(t, global, Effective(global, nil))
}
