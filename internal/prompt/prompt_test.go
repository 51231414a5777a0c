package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/bizassist/internal/business"
	"github.com/nadzzz/bizassist/internal/prompt"
)

func TestBuild_EmbedsQueryAndMetrics(t *testing.T) {
	days := make([]business.Day, 31)
	days[0] = business.Day{Orders: []business.Order{{TotalAmount: 1000}, {TotalAmount: 234.5}}}
	for i := 24; i < 31; i++ {
		days[i] = business.Day{Orders: []business.Order{{TotalAmount: 100}}, AverageOrderValue: 250}
	}

	p := prompt.Build("How were sales?", business.NewRecord(days), "बिक्री कैसी रही?", "hi")

	assert.Contains(t, p, "Language context: The user is speaking in hi")
	assert.Contains(t, p, "Original Query: बिक्री कैसी रही?")
	assert.Contains(t, p, "Translated Query: How were sales?")
	assert.Contains(t, p, "- Last month's sales: ₹1234.50")
	assert.Contains(t, p, "- This month so far: ₹700.00 (last 7 days)")
	assert.Contains(t, p, "- Average order value: ₹250.00")
	assert.Contains(t, p, `["Prompt 1", "Prompt 2", "Prompt 3"]`)
}

func TestBuild_EmptyRecord(t *testing.T) {
	p := prompt.Build("q", business.NewRecord(nil), "q", "en")

	assert.Equal(t, 3, strings.Count(p, "₹0.00"))
}
