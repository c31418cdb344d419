package llm

// USD per 1K tokens: [input, output]. Unknown and local models cost zero.
var costPerToken = map[string][2]float64{
	// Groq
	"llama3-8b-8192":          {0.00005, 0.00008},
	"llama3-70b-8192":         {0.00059, 0.00079},
	"llama-3.1-8b-instant":    {0.00005, 0.00008},
	"llama-3.3-70b-versatile": {0.00059, 0.00079},
	"mixtral-8x7b-32768":      {0.00024, 0.00024},

	// OpenAI
	"gpt-4o":                 {0.005, 0.015},
	"gpt-4o-mini":            {0.00015, 0.0006},
	"text-embedding-3-small": {0.00002, 0},
	"text-embedding-3-large": {0.00013, 0},

	// Anthropic
	"claude-3-haiku-20240307":  {0.00025, 0.00125},
	"claude-sonnet-4-20250514": {0.003, 0.015},
}

func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	prices, ok := costPerToken[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1000.0*prices[0] + float64(outputTokens)/1000.0*prices[1]
}
