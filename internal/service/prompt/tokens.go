package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

// CountTokens estimates prompt length in the same unit as the budget.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}
