package collect

import (
	"claimline/internal/domain"
)

// Collector gathers per-item evidence into documentation snapshots.
// Collection is unconditional; option toggles are honored later at
// export time.
type Collector struct{}

func New() *Collector { return &Collector{} }

// Collect builds one ItemDocumentation per item.
func (c *Collector) Collect(items []domain.Item, _ domain.PackageOptions) []domain.ItemDocumentation {
	docs := make([]domain.ItemDocumentation, 0, len(items))
	for _, item := range items {
		docs = append(docs, domain.ItemDocumentation{
			Item:            item,
			Photos:          c.ItemPhotos(item),
			Receipts:        c.ItemReceipts(item),
			Warranties:      c.ItemWarranties(item),
			Manuals:         c.ItemManuals(item),
			ConditionPhotos: conditionPhotoData(item),
		})
	}
	return docs
}

// ItemPhotos is the primary photo, if present, plus all condition
// photos.
func (c *Collector) ItemPhotos(item domain.Item) [][]byte {
	var photos [][]byte
	if item.HasPhoto() {
		photos = append(photos, item.PhotoData)
	}
	photos = append(photos, conditionPhotoData(item)...)
	return photos
}

// ItemReceipts is the inline receipt image, if present, plus every
// receipt record's image.
func (c *Collector) ItemReceipts(item domain.Item) [][]byte {
	var receipts [][]byte
	if len(item.ReceiptImageData) > 0 {
		receipts = append(receipts, item.ReceiptImageData)
	}
	for _, receipt := range item.Receipts {
		if len(receipt.ImageData) > 0 {
			receipts = append(receipts, receipt.ImageData)
		}
	}
	return receipts
}

func (c *Collector) ItemWarranties(item domain.Item) [][]byte {
	var warranties [][]byte
	if item.Warranty != nil && len(item.Warranty.DocumentData) > 0 {
		warranties = append(warranties, item.Warranty.DocumentData)
	}
	return warranties
}

// ItemManuals is the manual PDF, if present, plus all document
// attachments.
func (c *Collector) ItemManuals(item domain.Item) [][]byte {
	var manuals [][]byte
	if len(item.ManualData) > 0 {
		manuals = append(manuals, item.ManualData)
	}
	for _, a := range item.Attachments {
		if len(a.Data) > 0 {
			manuals = append(manuals, a.Data)
		}
	}
	return manuals
}

func conditionPhotoData(item domain.Item) [][]byte {
	var photos [][]byte
	for _, p := range item.ConditionPhotos {
		if len(p.Data) > 0 {
			photos = append(photos, p.Data)
		}
	}
	return photos
}
