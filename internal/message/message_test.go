package message_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/bizassist/internal/message"
)

func TestAudioReply_JSONShape(t *testing.T) {
	r := message.AudioReply{
		Reply: message.Reply{
			Reply:            "Sales are up.",
			OriginalLanguage: "hi",
			LangCode:         "hi-IN",
			Recommendations:  []string{},
		},
		Transcript: "बिक्री",
		Spoken:     true,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Sales are up.", got["reply"])
	assert.Equal(t, "hi-IN", got["lang_code"])
	assert.Equal(t, true, got["spoken"])
	assert.Equal(t, []any{}, got["recommendations"])
	assert.Contains(t, got, "audio")
	assert.Nil(t, got["audio"])
	assert.Nil(t, got["audio_format"])

	r.SetAudio([]byte("mp3"), "mp3")
	require.NotNil(t, r.Audio)
	assert.Equal(t, "bXAz", *r.Audio)
	assert.Equal(t, "mp3", *r.AudioFormat)
}

func TestAudioQuery_HasAudio(t *testing.T) {
	assert.False(t, (&message.AudioQuery{}).HasAudio())
	assert.True(t, (&message.AudioQuery{Audio: []byte{1}}).HasAudio())
}
