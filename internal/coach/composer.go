package coach

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/ilyannn/bgvoicecoach/internal/cache"
	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
	"github.com/ilyannn/bgvoicecoach/internal/grammar"
	"github.com/ilyannn/bgvoicecoach/internal/metrics"
)

// CoachResponse is the Coach Composer's output (spec §4.5): a Bulgarian
// reply, the grammar corrections the reply addresses, an optional L1
// contrastive note, and the drills attached for study.
type CoachResponse struct {
	ReplyBG         string               `json:"reply_bg"`
	Corrections     []grammar.Correction `json:"corrections"`
	ContrastiveNote string               `json:"contrastive_note,omitempty"`
	Drills          []contentstore.Drill `json:"drills"`
}

const maxDrillsPerCorrection = 2

// noHearReply is the fixed reply for an empty/blank transcript (spec §4.5,
// §8: "Transcript length 0"): no corrections, no drills, no provider call.
const noHearReply = "Не те чух."

// Composer implements compose(transcript, l1_code) -> CoachResponse.
type Composer struct {
	store    *contentstore.Store
	detector *grammar.Detector
	provider ChatProvider
	cache    *cache.LRU[CoachResponse]
	timeout  time.Duration
}

// New builds a Composer. provider is the configured ChatProvider (already
// downgraded to Dummy upstream if credentials were absent).
func New(store *contentstore.Store, detector *grammar.Detector, provider ChatProvider) *Composer {
	return &Composer{
		store:    store,
		detector: detector,
		provider: provider,
		cache:    cache.New[CoachResponse](200),
		timeout:  20 * time.Second, // spec §5 per-provider-call deadline
	}
}

// Compose runs the full spec §4.5 pipeline. ctx governs the upstream
// provider call; if ctx is cancelled mid-call (session closed), no
// response is returned.
func (c *Composer) Compose(ctx context.Context, transcript, l1Code string) (CoachResponse, bool) {
	if strings.TrimSpace(transcript) == "" {
		return CoachResponse{ReplyBG: noHearReply}, true
	}

	corrections := c.detector.Detect(transcript)

	key := c.fingerprint(transcript, l1Code)
	if cached, ok := c.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("coach").Inc()
		return cached, true
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	hint := hintFromCorrections(corrections)
	reply, err := c.provider.Chat(callCtx, systemPrompt, transcript, hint)
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() != nil {
			// Session closed mid-call: no coach message is emitted.
			return CoachResponse{}, false
		}
		reply = c.localFallback(corrections)
	} else if !looksBulgarian(reply) {
		reply = c.localFallback(corrections)
	}

	resp := CoachResponse{
		ReplyBG:     reply,
		Corrections: corrections,
		Drills:      c.attachDrills(corrections),
	}
	if len(corrections) > 0 {
		if item, ok := c.store.GetItem(tagToItemID(c.store, corrections[0].ErrorTag)); ok {
			if note, ok := c.store.ContrastFor(item, l1Code); ok {
				resp.ContrastiveNote = note
			}
		}
	}

	c.cache.Put(key, resp)
	return resp, true
}

// fingerprint keys the response cache on the normalized transcript, the
// session L1, and the content-store version (spec §9 Open Question (b)):
// a content reload invalidates every cached reply.
func (c *Composer) fingerprint(transcript, l1Code string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(transcript), " "))
	sum := sha256.Sum256([]byte(norm + "|" + l1Code + "|" + c.store.Version()))
	return hex.EncodeToString(sum[:])
}

// localFallback is the deterministic response used when the provider is
// unavailable, times out, or returns non-Bulgarian text (spec §4.5 step 4).
func (c *Composer) localFallback(corrections []grammar.Correction) string {
	var b strings.Builder
	b.WriteString("Разбрах.")
	for _, corr := range corrections {
		b.WriteString(" ")
		b.WriteString(corr.Before)
		b.WriteString(" → ")
		b.WriteString(corr.After)
		b.WriteString(".")
	}
	return b.String()
}

// attachDrills collects up to maxDrillsPerCorrection drills per
// Correction, in the GrammarItem's declared order, deduplicated by prompt
// across the whole response (spec §4.5 step 5).
func (c *Composer) attachDrills(corrections []grammar.Correction) []contentstore.Drill {
	return AttachDrills(c.store, corrections)
}

// AttachDrills is the exported form of the same drill-attachment rule,
// for callers that only have corrections and a content store and don't
// need a full Composer (spec §4.8 /content/analyze).
func AttachDrills(store *contentstore.Store, corrections []grammar.Correction) []contentstore.Drill {
	var out []contentstore.Drill
	seen := make(map[string]bool)
	for _, corr := range corrections {
		id := tagToItemID(store, corr.ErrorTag)
		drills := store.GetDrills(id)
		taken := 0
		for _, d := range drills {
			if taken >= maxDrillsPerCorrection {
				break
			}
			if seen[d.Prompt] {
				continue
			}
			seen[d.Prompt] = true
			out = append(out, d)
			taken++
		}
	}
	return out
}

// tagToItemID resolves an error_tag back to its owning GrammarItem id.
// In this content model a tag is itself the item id, but detection is
// kept indirect so a future many-tags-per-item mapping needs no callers
// changed.
func tagToItemID(store *contentstore.Store, tag string) string {
	if _, ok := store.GetItem(tag); ok {
		return tag
	}
	return ""
}

func hintFromCorrections(corrections []grammar.Correction) string {
	if len(corrections) == 0 {
		return ""
	}
	tags := make([]string, 0, len(corrections))
	seen := make(map[string]bool)
	for _, corr := range corrections {
		if !seen[corr.ErrorTag] {
			seen[corr.ErrorTag] = true
			tags = append(tags, corr.ErrorTag)
		}
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}

// looksBulgarian is a cheap heuristic: the reply must contain at least
// one Cyrillic letter. It rejects empty replies and providers that ignore
// the "reply only in Bulgarian" instruction outright.
func looksBulgarian(s string) bool {
	for _, r := range s {
		if r >= 0x0400 && r <= 0x04FF {
			return true
		}
	}
	return false
}
