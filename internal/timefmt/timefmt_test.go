package timefmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToEpochString(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: "0"},
		{input: "1700000000", expected: "1700000000"},
		{input: "1700000000.75", expected: "1700000000"},
		{input: "2023-11-14T22:13:20.000Z", expected: "1700000000"},
		{input: "2023-11-14T22:13:20Z", expected: "1700000000"},
		{input: "2023-11-14T23:13:20+01:00", expected: "1700000000"},
		{input: "2023-11-14T22:13:20", expected: "1700000000"},
		{input: "not a time", expected: "0"},
		{input: "0", expected: "0"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, ToEpochString(tc.input), "input %q", tc.input)
	}
}

func TestToISOUTC(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: "1970-01-01T00:00:00.000Z"},
		{input: "1700000000", expected: "2023-11-14T22:13:20.000Z"},
		{input: "2023-11-14T22:13:20.123Z", expected: "2023-11-14T22:13:20.000Z"},
		{input: "2023-11-14T23:13:20+01:00", expected: "2023-11-14T22:13:20.000Z"},
		{input: "garbage", expected: "1970-01-01T00:00:00.000Z"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, ToISOUTC(tc.input), "input %q", tc.input)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, epoch := range []string{"0", "1", "946684800", "1700000000"} {
		require.Equal(t, epoch, ToEpochString(ToISOUTC(epoch)))
	}
	for _, iso := range []string{"1970-01-01T00:00:00.000Z", "2023-11-14T22:13:20.000Z"} {
		require.Equal(t, iso, ToISOUTC(ToEpochString(iso)))
	}
}
