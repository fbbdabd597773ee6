package config

import "github.com/kelseyhightower/envconfig"

type APIConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBPoolMaxConns          int32  `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMaxConnLifetime   string `envconfig:"DB_POOL_MAX_CONN_LIFETIME" default:"30m"`
	DBPoolHealthCheckPeriod string `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD" default:"1m"`

	// FCM
	FCMServerKey string  `envconfig:"FCM_SERVER_KEY" required:"true"`
	FCMBaseURL   string  `envconfig:"FCM_BASE_URL" default:"https://fcm.googleapis.com"`
	FCMRPSPerPod float64 `envconfig:"FCM_RPS_PER_POD" default:"20"`
	FCMBurst     int     `envconfig:"FCM_BURST" default:"40"`

	// dispatch cycle knobs
	DispatchConcurrency int    `envconfig:"DISPATCH_CONCURRENCY" default:"16"`
	ClaimStaleAfter     string `envconfig:"CLAIM_STALE_AFTER" default:"10m"`
	ClaimTTL            string `envconfig:"CLAIM_TTL" default:"48h"`
	SendTimeout         string `envconfig:"SEND_TIMEOUT" default:"8s"`
}

type WorkerConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBPoolMaxConns          int32  `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMaxConnLifetime   string `envconfig:"DB_POOL_MAX_CONN_LIFETIME" default:"30m"`
	DBPoolHealthCheckPeriod string `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD" default:"1m"`

	// AWS / SQS (dispatch ticks and registration jobs arrive here)
	AWSRegion          string `envconfig:"AWS_REGION" required:"true"`
	SQSQueueURL        string `envconfig:"SQS_QUEUE_URL" required:"true"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`
	SQSWaitTime        int32  `envconfig:"SQS_WAIT_TIME" default:"20"`
	SQSMaxMsgs         int32  `envconfig:"SQS_MAX_MSGS" default:"10"`
	SQSVizTimeout      int32  `envconfig:"SQS_VISIBILITY_TIMEOUT" default:"60"`
	WorkerConcurrency  int    `envconfig:"WORKER_CONCURRENCY" default:"4"`

	// FCM
	FCMServerKey string  `envconfig:"FCM_SERVER_KEY" required:"true"`
	FCMBaseURL   string  `envconfig:"FCM_BASE_URL" default:"https://fcm.googleapis.com"`
	FCMRPSPerPod float64 `envconfig:"FCM_RPS_PER_POD" default:"20"`
	FCMBurst     int     `envconfig:"FCM_BURST" default:"40"`

	// dispatch cycle knobs
	DispatchConcurrency int    `envconfig:"DISPATCH_CONCURRENCY" default:"16"`
	ClaimStaleAfter     string `envconfig:"CLAIM_STALE_AFTER" default:"10m"`
	ClaimTTL            string `envconfig:"CLAIM_TTL" default:"48h"`
	SendTimeout         string `envconfig:"SEND_TIMEOUT" default:"8s"`
}

func LoadAPI() APIConfig {
	var cfg APIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadWorker() WorkerConfig {
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
