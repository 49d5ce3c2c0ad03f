package corpus

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/scripture-analysis-api/internal/models"
)

// Load builds the corpus index from PostgreSQL. Rows are read in
// canonical (book order, chapter, verse) order, which the seed script
// guarantees matches ascending verse id; Build re-checks density.
func Load(ctx context.Context, db *sqlx.DB) (*Index, error) {
	b := NewBuilder()

	bookRows, err := db.QueryxContext(ctx, `
		SELECT id, name, abbreviation, testament, order_number
		FROM books
		ORDER BY order_number
	`)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	defer bookRows.Close()

	for bookRows.Next() {
		var book struct {
			ID           int    `db:"id"`
			Name         string `db:"name"`
			Abbreviation string `db:"abbreviation"`
			Testament    string `db:"testament"`
			OrderNumber  int    `db:"order_number"`
		}
		if err := bookRows.StructScan(&book); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.AddBook(models.Book{
			ID:           book.ID,
			Name:         book.Name,
			Abbreviation: book.Abbreviation,
			Testament:    book.Testament,
			OrderNumber:  book.OrderNumber,
		})
	}
	if err := bookRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	verseRows, err := db.QueryxContext(ctx, `
		SELECT v.id, b.id AS book_id, b.name AS book_name, c.chapter_number, v.verse_number, v.text
		FROM verses v
		JOIN chapters c ON v.chapter_id = c.id
		JOIN books b ON c.book_id = b.id
		ORDER BY v.id
	`)
	if err != nil {
		return nil, fmt.Errorf("load verses: %w", err)
	}
	defer verseRows.Close()

	for verseRows.Next() {
		var v VerseRef
		if err := verseRows.Scan(&v.ID, &v.BookID, &v.BookName, &v.Chapter, &v.VerseNumber, &v.Text); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		b.AddVerse(v)
	}
	if err := verseRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	idx, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build corpus index: %w", err)
	}
	return idx, nil
}
