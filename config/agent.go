package config

import "sync"

var (
	agentOnce   sync.Once
	agentConfig *AgentConfig
)

// AgentConfig points at the OpenAI-compatible chat endpoint used for
// the final accept/reject decision.
type AgentConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

func GetAgentConfig() *AgentConfig {
	agentOnce.Do(func() {
		loadEnv()
		agentConfig = &AgentConfig{
			BaseURL: getEnv("AGENT_BASE_URL", "https://api.openai.com/v1/chat/completions"),
			APIKey:  getEnv("AGENT_API_KEY", ""),
			Model:   getEnv("AGENT_MODEL", "gpt-4o-mini"),
		}
	})
	return agentConfig
}
