package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2/types"
	"github.com/google/uuid"

	"github.com/kailas-cloud/photodex/internal/domain"
)

// DefaultLocale is the Lex locale used when none is configured.
const DefaultLocale = "en_US"

// RecognizeTextAPI is the subset of the Lex V2 runtime client used here.
type RecognizeTextAPI interface {
	RecognizeText(
		ctx context.Context, in *lexruntimev2.RecognizeTextInput, optFns ...func(*lexruntimev2.Options),
	) (*lexruntimev2.RecognizeTextOutput, error)
}

// LexConfig identifies the bot that interprets search utterances.
type LexConfig struct {
	BotID      string
	BotAliasID string
	LocaleID   string
}

// Enabled reports whether bot identifiers are configured.
func (c LexConfig) Enabled() bool { return c.BotID != "" && c.BotAliasID != "" }

// LexExtractor implements domain.SlotExtractor with Lex V2.
type LexExtractor struct {
	client     RecognizeTextAPI
	cfg        LexConfig
	newSession func() string
}

// NewLexExtractor creates a Lex slot extractor.
func NewLexExtractor(client RecognizeTextAPI, cfg LexConfig) *LexExtractor {
	if cfg.LocaleID == "" {
		cfg.LocaleID = DefaultLocale
	}
	return &LexExtractor{client: client, cfg: cfg, newSession: uuid.NewString}
}

// ExtractSlots sends text as a fresh single-turn session and returns the interpreted
// value of every filled slot. Slots are ordered by slot name.
func (l *LexExtractor) ExtractSlots(ctx context.Context, text string) ([]string, error) {
	out, err := l.client.RecognizeText(ctx, &lexruntimev2.RecognizeTextInput{
		BotId:      aws.String(l.cfg.BotID),
		BotAliasId: aws.String(l.cfg.BotAliasID),
		LocaleId:   aws.String(l.cfg.LocaleID),
		SessionId:  aws.String(l.newSession()),
		Text:       aws.String(text),
	})
	if err != nil {
		return nil, fmt.Errorf("lex recognize text: %w: %w", domain.ErrNLUUnavailable, err)
	}
	if out.SessionState == nil || out.SessionState.Intent == nil {
		return nil, nil
	}
	return slotValues(out.SessionState.Intent.Slots), nil
}

func slotValues(slots map[string]types.Slot) []string {
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)

	var values []string
	for _, name := range names {
		values = append(values, interpreted(slots[name])...)
	}
	return values
}

// interpreted returns the slot value, or the values of a list slot.
func interpreted(s types.Slot) []string {
	if s.Value != nil {
		if v := aws.ToString(s.Value.InterpretedValue); v != "" {
			return []string{v}
		}
	}
	var values []string
	for _, sub := range s.Values {
		values = append(values, interpreted(sub)...)
	}
	return values
}
