package config

import (
	"github.com/saylorsolutions/evchan/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
options:
  replay-cache: true
events:
  status:
    replay-once: true
  audit:
    replay-cache: false
  42:
    exclusive-listen: true
`

const testTOML = `
[options]
replay-cache = true

[events.status]
replay-once = true

[events.audit]
replay-cache = false

[events.42]
exclusive-listen = true
`

func expectedDocument() *Document {
	return &Document{
		Options: channel.Options{ReplayCache: channel.On},
		Events: map[string]channel.Options{
			"status": {ReplayOnce: channel.On},
			"audit":  {ReplayCache: channel.Off},
			"42":     {ExclusiveListen: channel.On},
		},
	}
}

func TestParse(t *testing.T) {
	tests := map[Format]string{
		YAML: testYAML,
		TOML: testTOML,
	}
	for format, data := range tests {
		t.Run(string(format), func(t *testing.T) {
			doc, err := Parse([]byte(data), format)
			require.NoError(t, err)
			assert.Equal(t, expectedDocument(), doc)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(nil, YAML)
	require.NoError(t, err)
	assert.Equal(t, channel.Options{}, doc.Options)
	assert.Empty(t, doc.Events)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"ScalarDocument":   `just a string`,
		"ScalarOptions":    `options: 5`,
		"ListOptions":      "options:\n  - replay-cache",
		"ScalarEvents":     `events: nope`,
		"ScalarEventValue": "events:\n  status: 1",
		"NonBoolFlag":      "options:\n  replay-cache: sometimes",
		"UnknownFlag":      "options:\n  replay-forever: true",
		"UnknownSection":   "listeners: {}",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data), YAML)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.ErrorIs(t, err, channel.ErrInvalidArgument)
		})
	}
}

func TestParse_Syntax(t *testing.T) {
	_, err := Parse([]byte("options = ["), TOML)
	assert.Error(t, err)
	_, err = Parse([]byte("a: b"), Format("ini"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evchan.toml")
	require.NoError(t, os.WriteFile(path, []byte(testTOML), 0o600))
	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, expectedDocument(), doc)

	_, err = Load(filepath.Join(dir, "evchan.json"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocument_ConfigFuncs(t *testing.T) {
	doc, err := Parse([]byte(testYAML), YAML)
	require.NoError(t, err)
	ch, err := channel.New(doc.ConfigFuncs()...)
	require.NoError(t, err)
	assert.True(t, ch.Resolved("status").ReplayOnce)
	assert.False(t, ch.Resolved("audit").ReplayCache)
	assert.True(t, ch.Resolved("42").ExclusiveListen)
	assert.True(t, ch.Resolved("other").ReplayCache)

	var nilDoc *Document
	assert.Nil(t, nilDoc.ConfigFuncs())
}
