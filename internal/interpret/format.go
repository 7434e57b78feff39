package interpret

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tutorbot/tutor/internal/catalog"
	"github.com/tutorbot/tutor/pkg/reply"
)

// Output-format directives. Matched case-insensitively; an empty directive
// means "image".
const (
	FormatImage    = "image"
	FormatOracle   = "oracle"
	FormatReserved = "reserved"
	FormatPrice    = "price"
	FormatArt      = "art"
	FormatFlavor   = "flavor"
	FormatLegality = "legality"
)

// formatLabel pairs a legality map key with its display name. Display
// order is fixed.
type formatLabel struct {
	code  string
	label string
}

var legalityFormats = []formatLabel{
	{"standard", "Standard"},
	{"brawl", "Brawl"},
	{"pioneer", "Pioneer"},
	{"historic", "Historic"},
	{"modern", "Modern"},
	{"pauper", "Pauper"},
	{"legacy", "Legacy"},
	{"penny", "Penny"},
	{"vintage", "Vintage"},
	{"commander", "Commander"},
}

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

func formatPrice(v float64) string {
	return pricePrinter.Sprintf("$%.2f", v)
}

// Formatter turns a resolved card plus an output-format directive into a
// platform-agnostic Reply. The price path re-queries the catalog for
// printing history.
type Formatter struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewFormatter creates a Formatter backed by the given catalog.
func NewFormatter(cat Catalog, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{catalog: cat, logger: logger.With("component", "formatter")}
}

// Format renders card under the given directive. searchQuery is the
// original search text when the card came from a search reference, used by
// the price path to prefer a printing-exact query. An unrecognized
// directive yields nil: the reference is silently dropped.
func (f *Formatter) Format(ctx context.Context, directive, searchQuery string, card *catalog.Card) *reply.Reply {
	switch strings.ToLower(directive) {
	case "", FormatImage:
		return f.image(card)
	case FormatOracle:
		return f.oracle(card)
	case FormatReserved:
		return f.reserved(card)
	case FormatPrice:
		return f.price(ctx, searchQuery, card)
	case FormatArt:
		return f.art(card)
	case FormatFlavor:
		return f.flavor(card)
	case FormatLegality:
		return f.legality(card)
	default:
		return nil
	}
}

func (f *Formatter) image(card *catalog.Card) *reply.Reply {
	var atts []reply.Attachment
	for _, face := range card.FlattenedFaces() {
		if face.Images != nil && face.Images.Normal != "" {
			atts = append(atts, reply.NewImageAttachment(face.Name, face.Images.Normal))
		}
	}
	// No face carries an image: fall back to the card-level image.
	if len(atts) == 0 && card.Images != nil && card.Images.Normal != "" {
		atts = append(atts, reply.NewImageAttachment(card.Name, card.Images.Normal))
	}
	r := reply.WithAttachments(atts...)
	return &r
}

func (f *Formatter) oracle(card *catalog.Card) *reply.Reply {
	var atts []reply.Attachment
	for _, face := range card.FlattenedFaces() {
		if face.OracleText != "" {
			atts = append(atts, reply.NewTextAttachment(face.Name, face.OracleText))
		}
	}
	r := reply.WithAttachments(atts...)
	return &r
}

func (f *Formatter) reserved(card *catalog.Card) *reply.Reply {
	var r reply.Reply
	if card.Reserved {
		r = reply.TextReply(fmt.Sprintf("%s is *on the reserved list*.", card.Name))
	} else {
		r = reply.TextReply(fmt.Sprintf("%s is *not* on the reserved list.", card.Name))
	}
	return &r
}

func (f *Formatter) art(card *catalog.Card) *reply.Reply {
	var atts []reply.Attachment
	for _, face := range card.FlattenedFaces() {
		if face.Images == nil {
			continue
		}
		att := reply.NewImageAttachment(face.Name, face.Images.Art)
		if face.Artist != "" {
			att.Footer = "art by " + face.Artist
		}
		atts = append(atts, att)
	}
	r := reply.WithAttachments(atts...)
	return &r
}

func (f *Formatter) flavor(card *catalog.Card) *reply.Reply {
	var atts []reply.Attachment
	for _, face := range card.FlattenedFaces() {
		if face.FlavorText != "" {
			atts = append(atts, reply.NewTextAttachment(face.Name, face.FlavorText))
		}
	}
	var r reply.Reply
	if len(atts) == 0 {
		r = reply.TextReply(fmt.Sprintf("Sorry, %s doesn't have any flavor text.", card.Name))
	} else {
		r = reply.WithAttachments(atts...)
	}
	return &r
}

func (f *Formatter) legality(card *catalog.Card) *reply.Reply {
	var r reply.Reply
	if len(card.Legalities) == 0 {
		r = reply.TextReply(fmt.Sprintf("Sorry, %s doesn't have any format legality information available.", card.Name))
		return &r
	}
	table := reply.NewTableAttachment()
	for _, f := range legalityFormats {
		legal, ok := card.Legalities[f.code]
		if !ok {
			continue
		}
		label := "Not Legal"
		if legal == "legal" {
			label = "Legal"
		}
		table.AddRow(f.label, label)
	}
	r = reply.WithAttachments(table)
	return &r
}

// observation is one numeric price seen on a printing.
type observation struct {
	setName string
	price   float64
}

// price summarizes prices across printings. If the original search query
// pins down exactly one printing, that printing alone is priced; otherwise
// the card's full printing history is fetched. Printings partition into
// non-foil and foil observations, each summarized as cheapest/priciest
// rows (or a single Price row when only one observation exists). With no
// printing data at all, the card's own summary price is the last resort.
func (f *Formatter) price(ctx context.Context, searchQuery string, card *catalog.Card) *reply.Reply {
	printings, ok := f.collectPrintings(ctx, searchQuery, card)
	if !ok {
		var r reply.Reply
		if card.Prices != nil {
			if v, err := strconv.ParseFloat(card.Prices.USD, 64); err == nil {
				r = reply.WithAttachments(reply.NewTextAttachment(card.Name, formatPrice(v)))
				return &r
			}
		}
		r = f.priceApology(card)
		return &r
	}

	var nonFoils, foils []observation
	for _, p := range printings {
		if p.Prices == nil {
			continue
		}
		if v, err := strconv.ParseFloat(p.Prices.USD, 64); err == nil {
			nonFoils = append(nonFoils, observation{p.SetName, v})
		}
		if v, err := strconv.ParseFloat(p.Prices.USDFoil, 64); err == nil {
			foils = append(foils, observation{p.SetName, v})
		}
	}

	var atts []reply.Attachment
	if len(nonFoils) > 0 {
		atts = append(atts, priceTable(nonFoils, false))
	}
	if len(foils) > 0 {
		atts = append(atts, priceTable(foils, true))
	}

	var r reply.Reply
	if len(atts) == 0 {
		r = f.priceApology(card)
	} else {
		r = reply.WithAttachments(atts...)
	}
	return &r
}

func (f *Formatter) priceApology(card *catalog.Card) reply.Reply {
	return reply.TextReply(fmt.Sprintf("I'm sorry, Scryfall doesn't appear to have any price information available for %s.", card.Name))
}

// collectPrintings returns the printings to price and whether any printing
// source was reachable. Fetch failures collapse to "no source" so the
// caller can fall back to the card's summary price.
func (f *Formatter) collectPrintings(ctx context.Context, searchQuery string, card *catalog.Card) ([]catalog.Card, bool) {
	if searchQuery != "" {
		res, err := f.catalog.SearchAllPrintings(ctx, strings.TrimSpace(searchQuery))
		if err != nil {
			f.logger.Error("all-printings search failed", "query", searchQuery, "error", err)
		} else if len(res.Data) == 1 {
			return res.Data, true
		}
	}
	if card.PrintingsURL == "" {
		return nil, false
	}
	res, err := f.catalog.FetchPrintings(ctx, card.PrintingsURL)
	if err != nil {
		f.logger.Error("printings fetch failed", "card", card.Name, "error", err)
		return nil, false
	}
	return res.Data, true
}

// priceTable summarizes one partition. Ties go to the first-seen
// observation.
func priceTable(obs []observation, foil bool) reply.Attachment {
	cheapest, priciest := obs[0], obs[0]
	for _, o := range obs[1:] {
		if o.price < cheapest.price {
			cheapest = o
		}
		if o.price > priciest.price {
			priciest = o
		}
	}

	suffix := ""
	if foil {
		suffix = " (foil)"
	}

	table := reply.NewTableAttachment()
	if len(obs) > 1 {
		table.AddRow("Cheapest Printing"+suffix, priceValue(cheapest))
		table.AddRow("Priciest Printing"+suffix, priceValue(priciest))
	} else {
		table.AddRow("Price"+suffix, priceValue(cheapest))
	}
	return table
}

func priceValue(o observation) string {
	return fmt.Sprintf("*%s* - _%s_", formatPrice(o.price), o.setName)
}
