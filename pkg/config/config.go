// Package config loads and validates the sonar INI configuration file:
// the global, programs, transport (kafka/directory), and per-operation
// sections described in the external interface section of the sonar
// specification.
package config

import "time"

// Role distinguishes a compute-node agent from the one cluster master
// that also emits Slurm job/cluster records.
type Role string

const (
	RoleNode   Role = "node"
	RoleMaster Role = "master"
)

// Global holds [global] section keys.
type Global struct {
	Cluster      string
	Role         Role
	LockDir      string
	TopicPrefix  string
	HostnameOnly bool
}

// Programs holds the absolute paths of external tools, [programs]
// section. An empty path disables the corresponding operation's
// external-subprocess step.
type Programs struct {
	Curl      string
	Sacct     string
	Scontrol  string
	Sinfo     string
	TopoSVG   string
	TopoText  string
}

// Kafka holds [kafka] section keys. BrokerAddress selects the Kafka
// sink; RestEndpoint selects the HTTP relay sink. At most one transport
// section (Kafka or Directory) may be present, enforced by Validate.
type Kafka struct {
	BrokerAddress   string
	RestEndpoint    string
	HTTPProxy       string
	SendingWindow   time.Duration
	Timeout         time.Duration
	CAFile          string
	SASLUser        string
	SASLPassword    string
	SASLPasswordFile string
}

// Directory holds [directory] section keys.
type Directory struct {
	DataDirectory string
}

// Sample holds [sample] section keys.
type Sample struct {
	Cadence          time.Duration
	ExcludeSystemJobs bool
	Load             bool
	Batchless        bool
	Rollup           bool
	ExcludeUsers     []string
	ExcludeCommands  []string
	MinCPUTime       time.Duration
}

// Sysinfo holds [sysinfo] section keys.
type Sysinfo struct {
	Cadence   time.Duration
	OnStartup bool
}

// Jobs holds [jobs] section keys.
type Jobs struct {
	Cadence     time.Duration
	Window      time.Duration
	Uncompleted bool
	BatchSize   int
}

// Cluster holds [cluster] section keys.
type Cluster struct {
	Cadence   time.Duration
	OnStartup bool
}

// Debug holds [debug] section keys, all of which are test/operational
// aids and never required.
type Debug struct {
	Verbose    bool
	TimeLimit  time.Duration
	Oneshot    bool
	OutputDelay time.Duration
}

// Config is the fully parsed and validated configuration.
type Config struct {
	Global    Global
	Programs  Programs
	Kafka     *Kafka
	Directory *Directory
	Sample    *Sample
	Sysinfo   *Sysinfo
	Jobs      *Jobs
	Cluster   *Cluster
	Debug     Debug
}

// HasKafka reports whether the Kafka/HTTP-relay transport is configured.
func (c *Config) HasKafka() bool { return c.Kafka != nil }

// HasDirectory reports whether the directory-tree transport is configured.
func (c *Config) HasDirectory() bool { return c.Directory != nil }
