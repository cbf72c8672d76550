// Package search publishes finished documents to a NATS subject for an
// external search indexer.
package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.SearchIndexer = (*Publisher)(nil)
	_ ports.SearchIndexer = Noop{}
)

// HeaderOperation carries "upsert" or "delete" so consumers can route without
// decoding the body.
const HeaderOperation = "Press-Operation"

const connectTimeout = 5 * time.Second

// Publisher sends one message per document. Publishing is fire-and-forget on
// the core NATS connection; Close flushes what is buffered.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  ports.Logger
}

// Connect dials the server at cfg.NATSURL.
func Connect(cfg domain.SearchConfig, logger ports.Logger) (*Publisher, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("press"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to connect to NATS"), "url", cfg.NATSURL)
	}
	subject := cfg.Subject
	if subject == "" {
		subject = domain.DefaultSearchSubject
	}
	logger.Debug("search indexer connected", "url", cfg.NATSURL, "subject", subject)
	return &Publisher{conn: conn, subject: subject, logger: logger}, nil
}

// Index publishes doc.
func (p *Publisher) Index(ctx context.Context, doc domain.SearchDocument) error {
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(domain.ErrBuildCancelled, err.Error())
	}
	msg, err := NewMessage(p.subject, doc)
	if err != nil {
		return err
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to publish document"), "node", doc.ID.String())
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	defer p.conn.Close()
	if err := p.conn.FlushTimeout(connectTimeout); err != nil {
		return zerr.Wrap(err, "failed to flush search documents")
	}
	return nil
}

// NewMessage encodes doc as a JSON message with the document id as the
// NATS message id, which lets JetStream deduplicate replays.
func NewMessage(subject string, doc domain.SearchDocument) (*nats.Msg, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to encode document"), "node", doc.ID.String())
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	op := "upsert"
	if doc.Deleted {
		op = "delete"
	}
	msg.Header.Set(HeaderOperation, op)
	msg.Header.Set(nats.MsgIdHdr, doc.ID.String()+"@"+op+"@"+contentTag(doc))
	return msg, nil
}

func contentTag(doc domain.SearchDocument) string {
	if doc.Deleted {
		return "-"
	}
	return doc.Checksum
}

// Noop discards documents. It is used when no NATS URL is configured.
type Noop struct{}

// Index implements ports.SearchIndexer.
func (Noop) Index(context.Context, domain.SearchDocument) error { return nil }

// Close implements ports.SearchIndexer.
func (Noop) Close() error { return nil }
