package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicMatch(t *testing.T) {
	cases := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"coalbot/status", "coalbot/status", true},
		{"coalbot/status", "coalbot/other", false},
		{"coalbot/+/reply", "coalbot/ping/reply", true},
		{"coalbot/+/reply", "coalbot/ping/request", false},
		{"coalbot/#", "coalbot/request/ping", true},
		{"coalbot/#", "other/request/ping", false},
		{"coalbot/request/ping", "coalbot/request", false},
		{"coalbot/request", "coalbot/request/ping", false},
		{"+/+", "a/b", true},
	}
	for _, tc := range cases {
		t.Run(tc.pattern+" vs "+tc.topic, func(t *testing.T) {
			assert.Equal(t, tc.want, topicMatch(tc.pattern, tc.topic))
		})
	}
}
