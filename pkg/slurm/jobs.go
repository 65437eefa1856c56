package slurm

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/hpctools/sonar/pkg/envelope"
)

// timeLayout matches the --starttime format used when invoking sacct
// and the Submit/Start/End columns it reports back.
const timeLayout = "2006-01-02T15:04:05"

// ParseSacct decodes sacct's "--parsable2" pipe-separated output into
// job records, using sacctFields' column order. "Unknown" and
// zero-valued timestamp fields are left at their Go zero value, which
// the envelope layer omits on marshal.
func ParseSacct(raw []byte) ([]envelope.JobRecord, error) {
	var records []envelope.JobRecord

	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "|")
		if len(cols) < len(sacctFields) {
			continue
		}

		id, err := DecodeRawID(cols[0])
		if err != nil {
			continue
		}

		rec := envelope.JobRecord{
			JobID:        id.JobID,
			Step:         id.Step,
			ArrayJobID:   id.ArrayJobID,
			ArrayTaskID:  id.ArrayTaskID,
			HetJobID:     id.HetJobID,
			HetJobOffset: id.HetJobOffset,
			User:         unknownToEmpty(cols[1]),
			Account:      unknownToEmpty(cols[2]),
			Partition:    unknownToEmpty(cols[3]),
			State:        unknownToEmpty(cols[4]),
			SubmitTime:   parseSacctTime(cols[5]),
			StartTime:    parseSacctTime(cols[6]),
			EndTime:      parseSacctTime(cols[7]),
			NodeList:     unknownToEmpty(cols[8]),
		}

		if tr, err := ParseTRES(cols[9]); err == nil {
			applyReqTRES(&rec, tr)
		}
		if cols[10] != "" {
			rec.AllocTRES = cols[10]
		}

		records = append(records, rec)
	}
	return records, sc.Err()
}

func applyReqTRES(rec *envelope.JobRecord, tr TRES) {
	if v, ok, _ := tr.Value("cpu"); ok {
		rec.ReqCPUs = int(v)
	}
	if v, ok, _ := tr.ValueBytes("mem"); ok {
		rec.ReqMemoryKiB = v / 1024
	}
	if v, ok, _ := tr.Value("gres/gpu"); ok {
		rec.ReqGPUs = int(v)
	}
}

func unknownToEmpty(s string) string {
	if s == "Unknown" || s == "(null)" {
		return ""
	}
	return s
}

func parseSacctTime(s string) time.Time {
	s = unknownToEmpty(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// EnrichFromScontrol overlays ReqTRES/AllocTRES from "scontrol show job"
// output onto the sacct-derived records for jobs that are currently
// running: when both sources provide a value, the control tool wins.
func EnrichFromScontrol(records []envelope.JobRecord, raw []byte) []envelope.JobRecord {
	byJobID := make(map[int64]*envelope.JobRecord, len(records))
	for i := range records {
		byJobID[records[i].JobID] = &records[i]
	}

	for _, block := range strings.Split(string(raw), "\n\n") {
		jobID, ok := scontrolField(block, "JobId")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(jobID, 10, 64)
		if err != nil {
			continue
		}
		rec, ok := byJobID[id]
		if !ok {
			continue
		}
		if tresStr, ok := scontrolField(block, "ReqTRES"); ok {
			if tr, err := ParseTRES(tresStr); err == nil {
				applyReqTRES(rec, tr)
			}
		}
		if tresStr, ok := scontrolField(block, "TRES"); ok {
			rec.AllocTRES = tresStr
		}
	}
	return records
}

// scontrolField extracts "Key=value" out of scontrol's space-delimited,
// multi-line-per-job block output.
func scontrolField(block, key string) (string, bool) {
	needle := key + "="
	for _, field := range strings.Fields(block) {
		if strings.HasPrefix(field, needle) {
			return strings.TrimPrefix(field, needle), true
		}
	}
	return "", false
}

// Batch splits records into envelopes of at most batchSize records
// each, preserving order; concatenating the Jobs arrays reproduces the
// input slice.
func Batch(cluster string, records []envelope.JobRecord, batchSize int) []envelope.JobsAttributes {
	if batchSize <= 0 || len(records) <= batchSize {
		return []envelope.JobsAttributes{{Cluster: cluster, Jobs: records}}
	}
	var batches []envelope.JobsAttributes
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, envelope.JobsAttributes{Cluster: cluster, Jobs: records[i:end]})
	}
	return batches
}
