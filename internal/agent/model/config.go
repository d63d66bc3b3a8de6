package model

// ================ Config ================
type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"30m"`
	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"10"`
	}
	Urgency struct {
		MaxPrompts int `envconfig:"CONVERSATION_URGENCY_MAX_PROMPTS" default:"2"`
	}
}

type GeneratorConfig struct {
	Provider    string  `envconfig:"GENERATOR_PROVIDER" default:"gemini"`
	Model       string  `envconfig:"GENERATOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"GENERATOR_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"GENERATOR_TEMPERATURE" default:"0.7"`
	Timeout     string  `envconfig:"GENERATOR_TIMEOUT" default:"20s"`
}

type FilterConfig struct {
	// BudgetTolerance widens the price ceiling so slightly over-budget
	// listings still match: price <= budget * (1 + tolerance).
	BudgetTolerance float64 `envconfig:"FILTER_BUDGET_TOLERANCE" default:"0.10"`
	// RelaxedBudgetTolerance replaces BudgetTolerance during relaxation.
	RelaxedBudgetTolerance float64 `envconfig:"FILTER_RELAXED_BUDGET_TOLERANCE" default:"0.25"`
	TopK                   int     `envconfig:"FILTER_TOP_K" default:"3"`
}

type KnowledgeConfig struct {
	PropertiesPath string `envconfig:"KNOWLEDGE_PROPERTIES_PATH" default:"data/properties.csv"`
	RulesPath      string `envconfig:"KNOWLEDGE_RULES_PATH" default:"data/rules.yaml"`
}

type PromptConfig struct {
	AgencyName string `envconfig:"PROMPT_AGENCY_NAME" default:"عقارات مصر"`
	Dialect    string `envconfig:"PROMPT_DIALECT" default:"Egyptian"`
}
