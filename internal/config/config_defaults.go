package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Posting breakdown should stay close to the source text
	v.SetDefault("ai.posting.provider", "gemini")
	v.SetDefault("ai.posting.timeout", 60*time.Second)
	v.SetDefault("ai.posting.maxRetries", 3)
	v.SetDefault("ai.posting.temperature", 0.1)

	v.SetDefault("ai.questions.provider", "gemini")
	v.SetDefault("ai.questions.timeout", 45*time.Second)
	v.SetDefault("ai.questions.maxRetries", 2)
	v.SetDefault("ai.questions.temperature", 0.7)

	v.SetDefault("ai.plan.provider", "gemini")
	v.SetDefault("ai.plan.timeout", 90*time.Second)
	v.SetDefault("ai.plan.maxRetries", 2)
	v.SetDefault("ai.plan.temperature", 0.4)

	for _, op := range Operations {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	v.SetDefault("scrape.userAgent", "Mozilla/5.0 (compatible; jobassist/1.0)")
	v.SetDefault("scrape.acceptLanguage", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	v.SetDefault("scrape.timeout", 20*time.Second)
	v.SetDefault("scrape.maxBodySize", 5*1024*1024)
	v.SetDefault("scrape.delay", time.Duration(0))
	v.SetDefault("scrape.profilePath", "props.pageProps.profile")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 1024*1024)
	v.SetDefault("server.healthCheckTimeout", 5*time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.watchPrompts", false)
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", 10*time.Minute)

	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // resumes as PDF can be larger than plain text

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.watch.enabled", false)
	v.SetDefault("vault.watch.pollInterval", 5*time.Minute)

	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "jobassist")
	v.SetDefault("observability.serviceVersion", "")  // app version when empty
	v.SetDefault("observability.serviceInstance", "") // generated when empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.extraction.enabled", true)
	v.SetDefault("observability.customMetrics.extraction.trackFallbacks", true)
	v.SetDefault("observability.customMetrics.extraction.trackDropped", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackFetches", true)

	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
