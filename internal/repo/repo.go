package repo

import (
	"context"
	"database/sql"
	"errors"

	"claimline/internal/domain"
)

// Repo is the item store. The pipeline itself never writes through it;
// assembly reads items and their evidence, the CLI and API manage them.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

const itemColumns = `id,name,COALESCE(category,''),COALESCE(room,''),purchase_price,purchase_date,serial_number,photo,receipt_image,manual,created_at,updated_at`

func scanItem(s interface{ Scan(...any) error }) (domain.Item, error) {
	var it domain.Item
	var price sql.NullFloat64
	var date, serial sql.NullString
	err := s.Scan(&it.ID, &it.Name, &it.Category, &it.Room, &price, &date, &serial,
		&it.PhotoData, &it.ReceiptImageData, &it.ManualData, &it.CreatedAt, &it.UpdatedAt)
	if err == sql.ErrNoRows {
		return it, ErrNotFound
	}
	if err != nil {
		return it, err
	}
	if price.Valid {
		it.PurchasePrice = &price.Float64
	}
	if date.Valid {
		it.PurchaseDate = &date.String
	}
	if serial.Valid {
		it.SerialNumber = &serial.String
	}
	return it, nil
}

func (r Repo) InsertItem(ctx context.Context, it domain.Item) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO items(id,name,category,room,purchase_price,purchase_date,serial_number,photo,receipt_image,manual,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		it.ID, it.Name, nullable(it.Category), nullable(it.Room),
		nullableFloat(it.PurchasePrice), nullablePtr(it.PurchaseDate), nullablePtr(it.SerialNumber),
		it.PhotoData, it.ReceiptImageData, it.ManualData, it.CreatedAt, it.UpdatedAt)
	return err
}

func (r Repo) UpdateItem(ctx context.Context, it domain.Item) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE items SET name=?,category=?,room=?,purchase_price=?,purchase_date=?,serial_number=?,photo=?,receipt_image=?,manual=?,updated_at=? WHERE id=?`,
		it.Name, nullable(it.Category), nullable(it.Room),
		nullableFloat(it.PurchasePrice), nullablePtr(it.PurchaseDate), nullablePtr(it.SerialNumber),
		it.PhotoData, it.ReceiptImageData, it.ManualData, it.UpdatedAt, it.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteItem(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM items WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetItem loads one item with all of its evidence attached.
func (r Repo) GetItem(ctx context.Context, id string) (domain.Item, error) {
	it, err := scanItem(r.DB.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id=?`, id))
	if err != nil {
		return it, err
	}
	return r.attachEvidence(ctx, it)
}

// ListItems returns all items, evidence attached, ordered by creation.
func (r Repo) ListItems(ctx context.Context) ([]domain.Item, error) {
	return r.listItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id`)
}

// ListItemsByRoom returns the items labeled with a room, for
// room-based claim scenarios.
func (r Repo) ListItemsByRoom(ctx context.Context, room string) ([]domain.Item, error) {
	return r.listItems(ctx, `SELECT `+itemColumns+` FROM items WHERE room=? ORDER BY created_at, id`, room)
}

func (r Repo) listItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		items[i], err = r.attachEvidence(ctx, items[i])
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r Repo) attachEvidence(ctx context.Context, it domain.Item) (domain.Item, error) {
	receipts, err := r.ListReceipts(ctx, it.ID)
	if err != nil {
		return it, err
	}
	it.Receipts = receipts

	w, err := r.GetWarranty(ctx, it.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return it, err
	}
	if err == nil {
		it.Warranty = &w
	}

	it.ConditionPhotos, err = r.ListConditionPhotos(ctx, it.ID)
	if err != nil {
		return it, err
	}
	it.Attachments, err = r.ListAttachments(ctx, it.ID)
	if err != nil {
		return it, err
	}
	return it, nil
}

func (r Repo) InsertReceipt(ctx context.Context, rec domain.Receipt) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO receipts(id,item_id,merchant_name,total_amount,purchase_date,image,created_at) VALUES (?,?,?,?,?,?,?)`,
		rec.ID, rec.ItemID, rec.MerchantName, rec.TotalAmount, nullablePtr(rec.PurchaseDate), rec.ImageData, rec.CreatedAt)
	return err
}

func (r Repo) ListReceipts(ctx context.Context, itemID string) ([]domain.Receipt, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,item_id,merchant_name,total_amount,purchase_date,image,created_at FROM receipts WHERE item_id=? ORDER BY created_at, id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var receipts []domain.Receipt
	for rows.Next() {
		var rec domain.Receipt
		var date sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.MerchantName, &rec.TotalAmount, &date, &rec.ImageData, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if date.Valid {
			rec.PurchaseDate = &date.String
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

func (r Repo) UpsertWarranty(ctx context.Context, w domain.Warranty) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO warranties(id,item_id,provider,expires_at,document) VALUES (?,?,?,?,?)
ON CONFLICT(item_id) DO UPDATE SET provider=excluded.provider, expires_at=excluded.expires_at, document=excluded.document`,
		w.ID, w.ItemID, w.Provider, nullablePtr(w.ExpiresAt), w.DocumentData)
	return err
}

func (r Repo) GetWarranty(ctx context.Context, itemID string) (domain.Warranty, error) {
	var w domain.Warranty
	var expires sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,item_id,provider,expires_at,document FROM warranties WHERE item_id=?`, itemID).
		Scan(&w.ID, &w.ItemID, &w.Provider, &expires, &w.DocumentData)
	if err == sql.ErrNoRows {
		return w, ErrNotFound
	}
	if err != nil {
		return w, err
	}
	if expires.Valid {
		w.ExpiresAt = &expires.String
	}
	return w, nil
}

func (r Repo) InsertConditionPhoto(ctx context.Context, p domain.ConditionPhoto, position int) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO condition_photos(id,item_id,description,photo,position) VALUES (?,?,?,?,?)`,
		p.ID, p.ItemID, nullable(p.Description), p.Data, position)
	return err
}

func (r Repo) ListConditionPhotos(ctx context.Context, itemID string) ([]domain.ConditionPhoto, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,item_id,COALESCE(description,''),photo FROM condition_photos WHERE item_id=? ORDER BY position, id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var photos []domain.ConditionPhoto
	for rows.Next() {
		var p domain.ConditionPhoto
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Description, &p.Data); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r Repo) InsertAttachment(ctx context.Context, a domain.Attachment) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO attachments(id,item_id,name,data) VALUES (?,?,?,?)`,
		a.ID, a.ItemID, a.Name, a.Data)
	return err
}

func (r Repo) ListAttachments(ctx context.Context, itemID string) ([]domain.Attachment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,item_id,name,data FROM attachments WHERE item_id=? ORDER BY name, id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attachments []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Name, &a.Data); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// LatestEvents returns the most recent pipeline events, newest first.
func (r Repo) LatestEvents(ctx context.Context, n int, evtType string) ([]Event, error) {
	query := `SELECT id,ts,type,entity_kind,COALESCE(entity_id,''),actor_id,payload_json FROM events`
	var args []any
	if evtType != "" {
		query += ` WHERE type=?`
		args = append(args, evtType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, n)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullablePtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
