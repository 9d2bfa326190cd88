// A small web inspector over the Badger store, for local debugging only.
// Never wire this into the public API surface.
package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key    string
	Type   string
	Detail string
}

// RowMapper turns a raw key/value pair into a display row.
type RowMapper func(key string, val []byte) InspectRow

type pageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves an HTML table of the store's keys on its own mux,
// separate from the API engine. The mapper decodes values for display.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = defaultMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")

		data := pageData{
			Prefix: prefix,
			Stats:  map[string]any{"rendered_at": time.Now().UTC().Format(time.RFC3339)},
		}

		err := db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			it := txn.NewIterator(opts)
			defer it.Close()

			p := []byte(prefix)
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				item := it.Item()
				key := string(item.KeyCopy(nil))
				err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(key, val))
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		data.Stats["keys"] = len(data.Items)
		if err := tmpl.Execute(w, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()
}

func defaultMapper(key string, val []byte) InspectRow {
	kind := "unknown"
	if i := strings.IndexByte(key, ':'); i > 0 {
		kind = key[:i]
	}
	return InspectRow{
		Key:    key,
		Type:   kind,
		Detail: fmt.Sprintf("%d bytes", len(val)),
	}
}
