package audit

import (
	"context"
	"errors"
	"time"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"
)

// Influx writes audit entries as points to an InfluxDB 2 bucket
type Influx struct {
	log         *util.Logger
	client      influxdb2.Client
	writer      influxapi.WriteAPIBlocking
	measurement string
	timeout     time.Duration
}

func init() {
	registry.Add("influx", NewInfluxFromConfig)
}

// NewInfluxFromConfig creates an influx audit log from generic config
func NewInfluxFromConfig(other map[string]interface{}) (api.AuditLogger, error) {
	cc := struct {
		URL, Token, Org, Bucket string
		Measurement             string
		Timeout                 time.Duration
	}{
		Measurement: "audit",
		Timeout:     5 * time.Second,
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	if cc.URL == "" || cc.Org == "" || cc.Bucket == "" {
		return nil, errors.New("missing url, org or bucket")
	}

	return NewInflux(cc.URL, cc.Token, cc.Org, cc.Bucket, cc.Measurement, cc.Timeout), nil
}

// NewInflux creates an influx audit log
func NewInflux(url, token, org, bucket, measurement string, timeout time.Duration) *Influx {
	log := util.NewLogger("influx")
	log.Redact(token)

	client := influxdb2.NewClient(url, token)

	return &Influx{
		log:         log,
		client:      client,
		writer:      client.WriteAPIBlocking(org, bucket),
		measurement: measurement,
		timeout:     timeout,
	}
}

// Log implements the api.AuditLogger interface
func (m *Influx) Log(entry api.AuditEntry) error {
	p := influxdb2.NewPoint(
		m.measurement,
		map[string]string{
			"adjustment": entry.Directive.String(),
		},
		map[string]interface{}{
			"id":               entry.ID,
			"originalToday132": entry.OriginalHighReading,
			"today132_adj":     entry.AdjustedHighReading,
			"net33":            entry.NormalizedLow,
			"net132":           entry.NormalizedHigh,
		},
		entry.Timestamp,
	)

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.log.TRACE.Printf("write %s %s", m.measurement, entry.ID)

	return m.writer.WritePoint(ctx, p)
}

// Close closes the influx client
func (m *Influx) Close() {
	m.client.Close()
}
