package collect_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"claimline/internal/collect"
	"claimline/internal/domain"
)

func TestCollectGathersAllEvidence(t *testing.T) {
	c := collect.New()
	item := domain.Item{
		ID:               "a",
		Name:             "Laptop",
		PhotoData:        []byte("main"),
		ReceiptImageData: []byte("inline-receipt"),
		ManualData:       []byte("manual"),
		Receipts: []domain.Receipt{
			{ID: "r1", ItemID: "a", ImageData: []byte("scan-1")},
			{ID: "r2", ItemID: "a"}, // record without image
		},
		Warranty: &domain.Warranty{ID: "w", ItemID: "a", DocumentData: []byte("warranty")},
		ConditionPhotos: []domain.ConditionPhoto{
			{ID: "c1", ItemID: "a", Data: []byte("damage-1")},
			{ID: "c2", ItemID: "a", Data: []byte("damage-2")},
		},
		Attachments: []domain.Attachment{{ID: "att", ItemID: "a", Name: "invoice", Data: []byte("invoice")}},
	}

	docs := c.Collect([]domain.Item{item}, domain.PackageOptions{})
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	doc := docs[0]

	wantPhotos := [][]byte{[]byte("main"), []byte("damage-1"), []byte("damage-2")}
	if !reflect.DeepEqual(doc.Photos, wantPhotos) {
		t.Errorf("Photos = %q, want %q", doc.Photos, wantPhotos)
	}
	wantReceipts := [][]byte{[]byte("inline-receipt"), []byte("scan-1")}
	if !reflect.DeepEqual(doc.Receipts, wantReceipts) {
		t.Errorf("Receipts = %q, want %q", doc.Receipts, wantReceipts)
	}
	if len(doc.Warranties) != 1 || !bytes.Equal(doc.Warranties[0], []byte("warranty")) {
		t.Errorf("Warranties = %q", doc.Warranties)
	}
	wantManuals := [][]byte{[]byte("manual"), []byte("invoice")}
	if !reflect.DeepEqual(doc.Manuals, wantManuals) {
		t.Errorf("Manuals = %q, want %q", doc.Manuals, wantManuals)
	}
	if len(doc.ConditionPhotos) != 2 {
		t.Errorf("ConditionPhotos = %q", doc.ConditionPhotos)
	}
}

func TestCollectIgnoresOptionToggles(t *testing.T) {
	c := collect.New()
	item := domain.Item{ID: "a", Name: "Lamp", PhotoData: []byte("p"), ReceiptImageData: []byte("r")}

	// Toggles apply at export time; collection always gathers.
	opts := domain.PackageOptions{IncludePhotos: false, IncludeReceipts: false}
	docs := c.Collect([]domain.Item{item}, opts)
	if len(docs[0].Photos) != 1 || len(docs[0].Receipts) != 1 {
		t.Errorf("Photos = %d, Receipts = %d, want 1 and 1", len(docs[0].Photos), len(docs[0].Receipts))
	}
}

func TestCreateLayout(t *testing.T) {
	c := collect.New()
	base := t.TempDir()

	dirs, err := c.CreateLayout(base, "ClaimPackage_test")
	if err != nil {
		t.Fatalf("CreateLayout: %v", err)
	}
	if dirs.Root != filepath.Join(base, "ClaimPackage_test") {
		t.Errorf("Root = %s", dirs.Root)
	}
	for _, dir := range []string{dirs.Documentation, dirs.Forms, dirs.Attestations, dirs.Photos} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestWritePhotoTree(t *testing.T) {
	c := collect.New()
	dirs, err := c.CreateLayout(t.TempDir(), "pkg")
	if err != nil {
		t.Fatalf("CreateLayout: %v", err)
	}

	docs := c.Collect([]domain.Item{
		{
			ID:               "a",
			Name:             "Coffee Maker",
			PhotoData:        []byte("main"),
			ReceiptImageData: []byte("receipt"),
			ConditionPhotos:  []domain.ConditionPhoto{{ID: "c", ItemID: "a", Data: []byte("crack")}},
			Warranty:         &domain.Warranty{ID: "w", ItemID: "a", DocumentData: []byte("warranty")},
		},
		{ID: "b", Name: "Stool"}, // no evidence at all
	}, domain.PackageOptions{})

	if err := c.WritePhotoTree(dirs, docs, domain.DefaultPackageOptions()); err != nil {
		t.Fatalf("WritePhotoTree: %v", err)
	}

	itemDir := filepath.Join(dirs.Photos, "Coffee_Maker")
	for name, want := range map[string]string{
		"main_photo":          "main",
		"condition_photo_1":   "crack",
		"receipt":             "receipt",
		"warranty_document_1": "warranty",
	} {
		data, err := os.ReadFile(filepath.Join(itemDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dirs.Photos, "Stool"))
	if err != nil {
		t.Fatalf("read empty item dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("empty item produced files: %v", entries)
	}
}

func TestWritePhotoTreeHonorsToggles(t *testing.T) {
	c := collect.New()
	item := domain.Item{
		ID:               "a",
		Name:             "Coffee Maker",
		PhotoData:        []byte("main"),
		ReceiptImageData: []byte("receipt"),
		ConditionPhotos:  []domain.ConditionPhoto{{ID: "c", ItemID: "a", Data: []byte("crack")}},
		Warranty:         &domain.Warranty{ID: "w", ItemID: "a", DocumentData: []byte("warranty")},
	}
	docs := c.Collect([]domain.Item{item}, domain.PackageOptions{})

	cases := []struct {
		name string
		opts domain.PackageOptions
		want []string
	}{
		{
			name: "no receipts",
			opts: domain.PackageOptions{IncludePhotos: true, IncludeWarranties: true},
			want: []string{"condition_photo_1", "main_photo", "warranty_document_1"},
		},
		{
			name: "no warranties",
			opts: domain.PackageOptions{IncludePhotos: true, IncludeReceipts: true},
			want: []string{"condition_photo_1", "main_photo", "receipt"},
		},
		{
			name: "no photos",
			opts: domain.PackageOptions{IncludeReceipts: true, IncludeWarranties: true},
			want: []string{"receipt", "warranty_document_1"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dirs, err := c.CreateLayout(t.TempDir(), "pkg")
			if err != nil {
				t.Fatalf("CreateLayout: %v", err)
			}
			if err := c.WritePhotoTree(dirs, docs, tc.opts); err != nil {
				t.Fatalf("WritePhotoTree: %v", err)
			}
			entries, err := os.ReadDir(filepath.Join(dirs.Photos, "Coffee_Maker"))
			if err != nil {
				t.Fatalf("read item dir: %v", err)
			}
			var got []string
			for _, entry := range entries {
				got = append(got, entry.Name())
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("files = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Coffee Maker", "Coffee_Maker"},
		{"TV (living room)", "TV_living_room"},
		{"desk-2.0_b", "desk-2.0_b"},
		{"  spaced  out  ", "spaced_out"},
		{"///", "item"},
		{"", "item"},
	}
	for _, tc := range cases {
		if got := collect.SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
