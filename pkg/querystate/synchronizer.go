package querystate

import (
	"net/url"
	"strings"
	"time"

	"github.com/querysync-dev/querysync/pkg/codec"
	"github.com/querysync-dev/querysync/pkg/schema"
)

// bootstrap populates the store from the port's current address, exactly
// once per State lifetime.
//
// Undeclared keys, decode failures and kind mismatches are all silently
// dropped: each is equivalent to "not present". Defaults apply only when
// the raw query string is empty.
func (s *State) bootstrap() {
	raw := rawQueryOf(s.port.Read())
	if raw == "" {
		if len(s.cfg.defaults) > 0 {
			s.st.Restore(s.cfg.defaults)
		}
		return
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		// ParseQuery accumulates the pairs it could read; malformed
		// pairs degrade to "key absent", never to a failed bootstrap.
		s.log.Debug("query parsed partially", "error", err)
	}

	for _, name := range s.schema.Names() {
		texts, ok := values[name]
		if !ok || len(texts) == 0 {
			continue
		}
		kind, _ := s.schema.Kind(name)
		v, ok := codec.Decode(kind, texts[0])
		if !ok {
			s.log.Debug("bootstrap pair dropped", "name", name, "kind", kind.String())
			continue
		}
		if !s.schema.ValidateKey(name, v) {
			continue
		}
		s.st.Set(name, v)
	}
}

// schedulePublish is the signal listener: it runs after each committed
// mutation turn, once per turn even when the turn batched several
// mutations.
func (s *State) schedulePublish() {
	if s.closed.Load() {
		return
	}
	if s.cfg.debounce > 0 {
		s.timerMu.Lock()
		defer s.timerMu.Unlock()
		if s.timer != nil {
			s.timer.Stop()
		}
		s.timer = time.AfterFunc(s.cfg.debounce, s.publish)
		return
	}
	s.publish()
}

// publish projects the current store into a canonical query string and
// writes it through the port. It performs no I/O beyond the port and
// never fails.
func (s *State) publish() {
	if s.closed.Load() {
		return
	}
	snap := s.sig.Peek()
	query := encodeQuery(s.schema, snap.values)
	addr := composeAddress(s.port.Read(), query)

	if s.cfg.mode == ModeReplace {
		s.port.Replace(addr)
	} else {
		s.port.Push(addr)
	}
	s.log.Debug("published", "query", query)
}

// encodeQuery builds the query-string projection: schema-declaration
// order, percent-encoded name=value pairs joined by '&'. Keys whose value
// serializes to the empty string are skipped.
func encodeQuery(sch *schema.Schema, values map[string]schema.Value) string {
	var b strings.Builder
	for _, name := range sch.Names() {
		v, ok := values[name]
		if !ok {
			continue
		}
		text := codec.Encode(v)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(text))
	}
	return b.String()
}

// composeAddress keeps the current path and swaps in the new query.
// An empty query drops the '?' entirely.
func composeAddress(current, query string) string {
	if u, err := url.Parse(current); err == nil {
		u.RawQuery = query
		return u.String()
	}
	// Unparseable address: fall back to splitting on the first '?'.
	base := current
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	if query == "" {
		return base
	}
	return base + "?" + query
}

// rawQueryOf extracts the raw query component of an address.
func rawQueryOf(addr string) string {
	if u, err := url.Parse(addr); err == nil {
		return u.RawQuery
	}
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
