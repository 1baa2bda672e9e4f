package vercmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemverSelectLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		hint     string
		want     string
		wantErr  bool
	}{
		{
			name:     "stable beats newer prerelease",
			versions: []string{"1.2.3", "1.3.0", "2.0.0-beta"},
			want:     "1.3.0",
		},
		{
			name:     "prerelease only when nothing stable",
			versions: []string{"2.0.0-beta.1", "2.0.0-beta.2"},
			want:     "2.0.0-beta.2",
		},
		{
			name:     "v prefix preserved",
			versions: []string{"v1.0.0", "v1.1.0"},
			want:     "v1.1.0",
		},
		{
			name:     "unparseable entries skipped",
			versions: []string{"not-a-version", "1.0.0"},
			want:     "1.0.0",
		},
		{
			name:     "nothing parseable",
			versions: []string{"latest", "edge"},
			wantErr:  true,
		},
		{
			name:     "empty input",
			versions: nil,
			wantErr:  true,
		},
		{
			name:     "hint filters to suffix",
			versions: []string{"1.0.0-rc.1", "1.0.0", "1.1.0-rc.1"},
			hint:     "-rc.1",
			want:     "1.1.0-rc.1",
		},
		{
			name:     "hint matching nothing fails",
			versions: []string{"1.0.0", "1.1.0"},
			hint:     "-alpine",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Semver{}.SelectLatest(tt.versions, tt.hint)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPEP440SelectLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{
			name:     "final beats release candidate",
			versions: []string{"1.0rc1", "1.0", "0.9"},
			want:     "1.0",
		},
		{
			name:     "post release beats final",
			versions: []string{"1.0", "1.0.post1"},
			want:     "1.0.post1",
		},
		{
			name:     "dev sorts below everything in its release",
			versions: []string{"2.0.dev1", "1.9"},
			want:     "1.9",
		},
		{
			name:     "epoch dominates",
			versions: []string{"1!1.0", "2.0"},
			want:     "1!1.0",
		},
		{
			name:     "alpha beta rc ordering",
			versions: []string{"1.0a2", "1.0b1", "1.0rc1"},
			want:     "1.0rc1",
		},
		{
			name:     "release segments numeric not lexicographic",
			versions: []string{"1.9", "1.10"},
			want:     "1.10",
		},
		{
			name:     "prerelease only set",
			versions: []string{"1.0a1", "1.0a2"},
			want:     "1.0a2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PEP440{}.SelectLatest(tt.versions, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPEP440Compare(t *testing.T) {
	ordered := []string{"1.0.dev1", "1.0a1", "1.0b1", "1.0rc1", "1.0", "1.0.post1", "1.1"}
	for i := 0; i < len(ordered)-1; i++ {
		a, ok := parsePEP440(ordered[i])
		require.True(t, ok, ordered[i])
		b, ok := parsePEP440(ordered[i+1])
		require.True(t, ok, ordered[i+1])
		assert.Negative(t, pep440Compare(a, b), "%s should sort before %s", ordered[i], ordered[i+1])
	}
}

func TestMavenSelectLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		hint     string
		want     string
		wantErr  bool
	}{
		{
			name:     "snapshots excluded by default",
			versions: []string{"1.0.0", "1.1.0-SNAPSHOT"},
			want:     "1.0.0",
		},
		{
			name:     "snapshot hint includes them",
			versions: []string{"1.0.0", "1.1.0-SNAPSHOT"},
			hint:     "snapshot",
			want:     "1.1.0-SNAPSHOT",
		},
		{
			name:     "snapshot hint is case insensitive",
			versions: []string{"1.0.0", "1.1.0-SNAPSHOT"},
			hint:     "SNAPSHOT",
			want:     "1.1.0-SNAPSHOT",
		},
		{
			name:     "qualifier ordering alpha beta rc release",
			versions: []string{"2.0-alpha1", "2.0-beta2", "2.0-rc1", "1.9"},
			want:     "1.9",
		},
		{
			name:     "sp beats release",
			versions: []string{"1.0", "1.0-sp1"},
			want:     "1.0-sp1",
		},
		{
			name:     "numeric segments compare numerically",
			versions: []string{"5.9.0", "5.10.0"},
			want:     "5.10.0",
		},
		{
			name:     "only snapshots without hint",
			versions: []string{"1.0-SNAPSHOT"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Maven{}.SelectLatest(tt.versions, tt.hint)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagsSelectLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		hint     string
		want     string
		wantErr  bool
	}{
		{
			name:     "variant hint picks newest matching tag",
			versions: []string{"3.19-alpine", "3.20-alpine", "3.20"},
			hint:     "alpine",
			want:     "3.20-alpine",
		},
		{
			name:     "numeric tags beat symbolic",
			versions: []string{"edge", "3.20", "3.19"},
			want:     "3.20",
		},
		{
			name:     "numeric compare not lexicographic",
			versions: []string{"3.9", "3.10"},
			want:     "3.10",
		},
		{
			name:     "v prefix tags",
			versions: []string{"v1.9.0", "v1.10.0"},
			want:     "v1.10.0",
		},
		{
			name:     "symbolic only falls back to lexical",
			versions: []string{"edge", "stable"},
			want:     "stable",
		},
		{
			name:     "hint matches nothing",
			versions: []string{"3.20", "3.19"},
			hint:     "alpine",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tags{}.SelectLatest(tt.versions, tt.hint)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLooseSelectLatest(t *testing.T) {
	got, err := Loose{}.SelectLatest([]string{"4.8.0", "4.8.1", "13.0.1", "13.0.2-beta1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "13.0.1", got)

	got, err = Loose{}.SelectLatest([]string{"1.0.0.1", "1.0.0.2"}, "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0.2", got)
}

func TestGenericSelectLatest(t *testing.T) {
	got, err := Generic{}.SelectLatest([]string{"v4", "v3", "v4.1.0"}, "")
	require.NoError(t, err)
	assert.Equal(t, "v4.1.0", got)

	got, err = Generic{}.SelectLatest([]string{"1.0.0", "2.0.0-rc1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", got)

	_, err = Generic{}.SelectLatest(nil, "")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGenericPrerelease(t *testing.T) {
	assert.True(t, genericPrerelease("2.0.0-rc1"))
	assert.True(t, genericPrerelease("1.0.0.beta3"))
	assert.True(t, genericPrerelease("24.05-nightly"))
	assert.False(t, genericPrerelease("1.0.0"))
	assert.False(t, genericPrerelease("v4"))
}
