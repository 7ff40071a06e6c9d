// Package publishers forwards panel notifications to external sinks: HTTP
// webhooks and cloud queues. Sinks are declared in a YAML or JSON file and
// built through a Registry keyed by publisher type.
package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

const (
	TypeQueue = "queue"
	TypeHTTP  = "http"

	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	// EventKind tags every event produced from a panel notification.
	EventKind = "newsdesk.notification"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// Event is the payload delivered to every sink.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	Operation  string    `json:"operation"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent wraps a notification in an Event with a fresh id.
func NewEvent(n domain.Notification) Event {
	at := n.At
	if at.IsZero() {
		at = time.Now()
	}
	return Event{
		ID:         uuid.NewString(),
		Kind:       EventKind,
		Severity:   string(n.Severity),
		Message:    n.Message,
		Operation:  string(n.Operation),
		Title:      n.Title,
		OccurredAt: at.UTC(),
	}
}

// attributes are attached to queue messages so subscribers can filter
// without decoding the body.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"kind":      e.Kind,
		"operation": e.Operation,
		"severity":  e.Severity,
	}
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface publishers need. internal/logger.Logger
// satisfies it.
type Logger interface {
	DebugObj(msg, key string, obj map[string]any)
	InfoObj(msg, key string, obj map[string]any)
	WarnObj(msg, key string, obj map[string]any)
	ErrorObj(msg, key string, obj map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one entry of the publishers file.
type PublisherConfig struct {
	ID      string                `json:"id" yaml:"id"`
	Type    string                `json:"type" yaml:"type"`
	Enabled *bool                 `json:"enabled" yaml:"enabled"`
	Queue   *QueuePublisherConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPPublisherConfig  `json:"http" yaml:"http"`
}

// QueuePublisherConfig selects a cloud queue provider.
type QueuePublisherConfig struct {
	Provider string                 `json:"provider" yaml:"provider"`
	SQS      *AWSSQSPublisherConfig `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSPublisherConfig `json:"sns" yaml:"sns"`
	GCP      *GCPQueueConfig        `json:"gcp" yaml:"gcp"`
}

// AWSCredentials are optional static credentials. When both fields are empty
// the default AWS credential chain is used.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

func (c AWSCredentials) static() bool { return c.AccessKeyID != "" || c.SecretAccessKey != "" }

type AWSSQSPublisherConfig struct {
	QueueURL       string `json:"uri" yaml:"uri"`
	Region         string `json:"region" yaml:"region"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

type AWSSNSPublisherConfig struct {
	TopicARN       string `json:"topic_arn" yaml:"topic_arn"`
	Region         string `json:"region" yaml:"region"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig describes a webhook. The event is sent as the JSON body.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

func (c HTTPPublisherConfig) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EnabledValue reports the enabled flag, which defaults to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// ConfigRegistry holds the validated entries of a publishers file.
type ConfigRegistry struct {
	publishers []PublisherConfig
	idx        map[string]int
}

// LoadRegistry reads the publishers file at path. Environment variables in
// the file are expanded before decoding, so secrets can stay out of it.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	return ParseRegistry([]byte(os.ExpandEnv(string(raw))), filepath.Ext(path))
}

// ParseRegistry decodes and validates a publishers document. ext picks the
// decoder (".yaml", ".yml" or ".json"); an empty ext tries each in turn.
func ParseRegistry(data []byte, ext string) (*ConfigRegistry, error) {
	file, err := decodeConfigFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{idx: make(map[string]int, len(file.Publishers))}
	for i, entry := range file.Publishers {
		cfg := normalize(entry)
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.idx[cfg.ID] = len(reg.publishers)
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

func decodeConfigFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		exts []string
		fn   func([]byte, any) error
	}{
		{exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{exts: []string{".json"}, fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && !contains(d.exts, ext) {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			lastErr = err
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return configFile{}, fmt.Errorf("decode publishers file: %w", lastErr)
	}
	return configFile{}, fmt.Errorf("publishers file extension %q not recognized (expected YAML or JSON)", ext)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func normalize(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if q := cfg.Queue; q != nil {
		qc := *q
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			s := *qc.SQS
			s.QueueURL = strings.TrimSpace(s.QueueURL)
			s.Region = strings.TrimSpace(s.Region)
			s.AWSCredentials = s.AWSCredentials.trimmed()
			qc.SQS = &s
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AWSCredentials = s.AWSCredentials.trimmed()
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}

	if h := cfg.HTTP; h != nil {
		hc := *h
		hc.URL = strings.TrimSpace(hc.URL)
		hc.Method = strings.ToUpper(strings.TrimSpace(hc.Method))
		if hc.Method == "" {
			hc.Method = httpDefaultMethod
		}
		hc.Headers = sanitizeHeaders(hc.Headers)
		if hc.TimeoutSeconds <= 0 {
			hc.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &hc
	}
	return cfg
}

func (c AWSCredentials) trimmed() AWSCredentials {
	return AWSCredentials{
		AccessKeyID:     strings.TrimSpace(c.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(c.SecretAccessKey),
	}
}

// sanitizeHeaders drops entries with an empty key or value.
func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
		return nil
	case TypeQueue:
		return cfg.validateQueue()
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}
}

func (cfg PublisherConfig) validateQueue() error {
	q := cfg.Queue
	if q == nil {
		return fmt.Errorf("queue config required for publisher %q", cfg.ID)
	}

	var missing string
	switch q.Provider {
	case QueueProviderAWSSQS:
		switch {
		case q.SQS == nil:
			missing = "queue.sqs"
		case q.SQS.QueueURL == "":
			missing = "queue.sqs.uri"
		case q.SQS.Region == "":
			missing = "queue.sqs.region"
		default:
			missing = q.SQS.AWSCredentials.missing("queue.sqs")
		}
	case QueueProviderAWSSNS:
		switch {
		case q.SNS == nil:
			missing = "queue.sns"
		case q.SNS.TopicARN == "":
			missing = "queue.sns.topic_arn"
		case q.SNS.Region == "":
			missing = "queue.sns.region"
		default:
			missing = q.SNS.AWSCredentials.missing("queue.sns")
		}
	case QueueProviderGCP:
		switch {
		case q.GCP == nil:
			missing = "queue.gcp"
		case q.GCP.ProjectID == "":
			missing = "queue.gcp.project_id"
		case q.GCP.Topic == "":
			missing = "queue.gcp.topic"
		}
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", q.Provider, cfg.ID)
	}
	if missing != "" {
		return fmt.Errorf("%s is required for publisher %q", missing, cfg.ID)
	}
	return nil
}

// missing names the half of a static credential pair that was left out.
func (c AWSCredentials) missing(prefix string) string {
	if !c.static() {
		return ""
	}
	if c.AccessKeyID == "" {
		return prefix + ".access_key_id"
	}
	if c.SecretAccessKey == "" {
		return prefix + ".secret_access_key"
	}
	return ""
}

// ByID returns the entry with the given id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.publishers[i], true
}

// All returns every entry in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.publishers...)
}

// Enabled returns the entries whose enabled flag is set or omitted.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
