// Package blocks normalizes ingested report blocks into chart/table models and
// price summary rows.
package blocks

import (
	"CommodityPulse/internal/domain/models"
	"CommodityPulse/pkg/jsonx"
)

// Kind is the recognized shape of a block.
type Kind int

const (
	KindUnknown Kind = iota
	KindTabular
	KindPrice
)

func (k Kind) String() string {
	switch k {
	case KindTabular:
		return "tabular"
	case KindPrice:
		return "price"
	default:
		return "unknown"
	}
}

// Block is one classified entry of a block map. The concrete types are
// TabularBlock, PriceBlock and UnknownBlock.
type Block interface {
	Key() string
	Kind() Kind
	isBlock()
}

// TabularBlock carries DataClass/DataChart/DataForm series.
type TabularBlock struct {
	key string
	raw *jsonx.Object
}

func (b TabularBlock) Key() string { return b.key }
func (b TabularBlock) Kind() Kind  { return KindTabular }
func (TabularBlock) isBlock()      {}

// Model builds the chart/table model of the block.
func (b TabularBlock) Model() models.ParsedBlockModel { return BuildTabular(b.raw) }

// PriceBlock is a price-analysis block.
type PriceBlock struct {
	key string
	raw *jsonx.Object
}

func (b PriceBlock) Key() string { return b.key }
func (b PriceBlock) Kind() Kind  { return KindPrice }
func (PriceBlock) isBlock()      {}

// Section maps the block into price rows.
func (b PriceBlock) Section() models.PriceSection { return PriceSectionOf(b.raw) }

// UnknownBlock is any other field value: scalars, unparsed strings, foreign objects.
type UnknownBlock struct {
	key   string
	Value any
}

func (b UnknownBlock) Key() string { return b.key }
func (b UnknownBlock) Kind() Kind  { return KindUnknown }
func (UnknownBlock) isBlock()      {}

// Classify recognizes the shape of one block map value.
func Classify(key string, v any) Block {
	obj, ok := v.(*jsonx.Object)
	if !ok || obj == nil {
		return UnknownBlock{key: key, Value: v}
	}
	if IsPriceBlock(obj) {
		return PriceBlock{key: key, raw: obj}
	}
	if IsTabularBlock(obj) {
		return TabularBlock{key: key, raw: obj}
	}
	return UnknownBlock{key: key, Value: v}
}

// IsTabularBlock reports whether obj declares series or carries chart/table arrays.
func IsTabularBlock(obj *jsonx.Object) bool {
	for _, f := range []string{FieldClass, FieldChart, FieldForm} {
		if _, ok := obj.Array(f); ok {
			return true
		}
	}
	return false
}

// ClassifyAll classifies every entry of a block map in order.
func ClassifyAll(blocks *jsonx.Object) []Block {
	out := make([]Block, 0, blocks.Len())
	for _, k := range blocks.Keys() {
		v, _ := blocks.Get(k)
		out = append(out, Classify(k, v))
	}
	return out
}
