package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	QueryInterval     int
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
