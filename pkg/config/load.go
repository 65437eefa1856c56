package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Load parses and validates the INI file at path.
func Load(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg := &Config{}

	g := f.Section("global")
	cfg.Global = Global{
		Cluster:      g.Key("cluster").String(),
		Role:         Role(g.Key("role").String()),
		LockDir:      g.Key("lock-directory").String(),
		TopicPrefix:  g.Key("topic-prefix").String(),
		HostnameOnly: g.Key("hostname-only").MustBool(true),
	}

	p := f.Section("programs")
	cfg.Programs = Programs{
		Curl:     p.Key("curl-command").String(),
		Sacct:    p.Key("sacct-command").String(),
		Scontrol: p.Key("scontrol-command").String(),
		Sinfo:    p.Key("sinfo-command").String(),
		TopoSVG:  p.Key("topo-svg-command").String(),
		TopoText: p.Key("topo-text-command").String(),
	}

	if f.HasSection("kafka") {
		k := f.Section("kafka")
		sendingWindow, err := parseDuration(k.Key("sending-window").MustString("5m"))
		if err != nil {
			return nil, fmt.Errorf("config: kafka.sending-window: %w", err)
		}
		timeout, err := parseDuration(k.Key("timeout").MustString("30m"))
		if err != nil {
			return nil, fmt.Errorf("config: kafka.timeout: %w", err)
		}
		cfg.Kafka = &Kafka{
			BrokerAddress:    k.Key("broker-address").String(),
			RestEndpoint:     k.Key("rest-endpoint").String(),
			HTTPProxy:        k.Key("http-proxy").String(),
			SendingWindow:    sendingWindow,
			Timeout:          timeout,
			CAFile:           k.Key("ca-file").String(),
			SASLUser:         k.Key("sasl-user").String(),
			SASLPassword:     k.Key("sasl-password").String(),
			SASLPasswordFile: k.Key("sasl-password-file").String(),
		}
	}

	if f.HasSection("directory") {
		d := f.Section("directory")
		cfg.Directory = &Directory{DataDirectory: d.Key("data-directory").String()}
	}

	if f.HasSection("sample") {
		s := f.Section("sample")
		cadence, err := parseDuration(s.Key("cadence").String())
		if err != nil {
			return nil, fmt.Errorf("config: sample.cadence: %w", err)
		}
		minCPU, err := parseDuration(s.Key("min-cpu-time").MustString("0s"))
		if err != nil {
			return nil, fmt.Errorf("config: sample.min-cpu-time: %w", err)
		}
		cfg.Sample = &Sample{
			Cadence:           cadence,
			ExcludeSystemJobs: s.Key("exclude-system-jobs").MustBool(true),
			Load:              s.Key("load").MustBool(true),
			Batchless:         s.Key("batchless").MustBool(false),
			Rollup:            s.Key("rollup").MustBool(false),
			ExcludeUsers:      splitList(s.Key("exclude-users").String()),
			ExcludeCommands:   splitList(s.Key("exclude-commands").String()),
			MinCPUTime:        minCPU,
		}
	}

	if f.HasSection("sysinfo") {
		s := f.Section("sysinfo")
		cadence, err := parseDuration(s.Key("cadence").String())
		if err != nil {
			return nil, fmt.Errorf("config: sysinfo.cadence: %w", err)
		}
		cfg.Sysinfo = &Sysinfo{
			Cadence:   cadence,
			OnStartup: s.Key("on-startup").MustBool(true),
		}
	}

	if f.HasSection("jobs") {
		j := f.Section("jobs")
		cadence, err := parseDuration(j.Key("cadence").String())
		if err != nil {
			return nil, fmt.Errorf("config: jobs.cadence: %w", err)
		}
		window := j.Key("window").MustString("")
		var windowDur time.Duration
		if window == "" {
			windowDur = 2 * cadence
		} else {
			windowDur, err = parseDuration(window)
			if err != nil {
				return nil, fmt.Errorf("config: jobs.window: %w", err)
			}
		}
		cfg.Jobs = &Jobs{
			Cadence:     cadence,
			Window:      windowDur,
			Uncompleted: j.Key("uncompleted").MustBool(false),
			BatchSize:   j.Key("batch-size").MustInt(0),
		}
	}

	if f.HasSection("cluster") {
		c := f.Section("cluster")
		cadence, err := parseDuration(c.Key("cadence").String())
		if err != nil {
			return nil, fmt.Errorf("config: cluster.cadence: %w", err)
		}
		cfg.Cluster = &Cluster{
			Cadence:   cadence,
			OnStartup: c.Key("on-startup").MustBool(true),
		}
	}

	d := f.Section("debug")
	var timeLimit, outputDelay time.Duration
	if v := d.Key("time-limit").String(); v != "" {
		timeLimit, err = parseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: debug.time-limit: %w", err)
		}
	}
	if v := d.Key("output-delay").String(); v != "" {
		outputDelay, err = parseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: debug.output-delay: %w", err)
		}
	}
	cfg.Debug = Debug{
		Verbose:     d.Key("verbose").MustBool(false),
		TimeLimit:   timeLimit,
		Oneshot:     d.Key("oneshot").MustBool(false),
		OutputDelay: outputDelay,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList parses a comma-separated config value into a slice,
// trimming whitespace and dropping empty elements.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDuration accepts the s|m|h suffix syntax from §6 of the
// specification (case-insensitive), on top of Go's native duration
// grammar so compound values like "1h30m" still work.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty duration")
	}
	return time.ParseDuration(strings.ToLower(v))
}
