//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/BurkushTetiana/itmarathon/domain"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrVersionConflict   = errors.New("room was modified concurrently")
)

type IRoomRepository interface {
	GetByUserCode(ctx context.Context, userCode string) (domain.Room, error)
	GetByRoomCode(ctx context.Context, roomCode string) (domain.Room, error)
	Update(ctx context.Context, room domain.Room) (domain.Room, error)
	Create(ctx context.Context, room domain.Room) (domain.Room, error)
}

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) *RoomRepository {
	return &RoomRepository{db: db, log: log}
}

// roomRecord is the on-disk shape of a room, CBOR-encoded under "room:{code}".
// Each user code also gets an index entry "user:{code}" holding the room code,
// written in the same transaction as the record itself.
type roomRecord struct {
	Code     string       `cbor:"code"`
	Name     string       `cbor:"name"`
	ClosedOn *time.Time   `cbor:"closed_on,omitempty"`
	Users    []userRecord `cbor:"users"`
	Version  uint64       `cbor:"version"`
}

type userRecord struct {
	ID        uint64 `cbor:"id"`
	UserCode  string `cbor:"user_code"`
	FirstName string `cbor:"first_name"`
	LastName  string `cbor:"last_name"`
	IsAdmin   bool   `cbor:"is_admin,omitempty"`
}

func roomKey(code domain.RoomCode) []byte { return []byte("room:" + code) }
func userKey(code string) []byte          { return []byte("user:" + code) }

// GetByUserCode resolves the room owning the given user code through the
// index entry. The entry outlives the user on purpose: codes are never
// reused, and a removed user's link must still land on the room so the
// caller can observe the committed membership.
func (r RoomRepository) GetByUserCode(ctx context.Context, userCode string) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}

	var record roomRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userCode))
		if err != nil {
			return err
		}
		var roomCode []byte
		if roomCode, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return readRecord(txn, roomKey(domain.RoomCode(roomCode)), &record)
	})
	if err != nil {
		return domain.Room{}, mapStoreError(err)
	}

	return toRoom(record), nil
}

// GetByRoomCode loads a room straight from its primary key.
func (r RoomRepository) GetByRoomCode(ctx context.Context, roomCode string) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}

	var record roomRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return readRecord(txn, roomKey(domain.RoomCode(roomCode)), &record)
	})
	if err != nil {
		return domain.Room{}, mapStoreError(err)
	}

	return toRoom(record), nil
}

// Update replaces the persisted state of the room in a single transaction.
// The stored version must match the one the room was loaded with, otherwise
// the write is rejected: last writer does not silently win. Badger's own
// conflict detection backs this up underneath.
func (r RoomRepository) Update(ctx context.Context, room domain.Room) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}

	next := fromRoom(room)
	next.Version = room.Version + 1

	err := r.db.Update(func(txn *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var current roomRecord
		if err := readRecord(txn, roomKey(room.Code), &current); err != nil {
			return err
		}
		if current.Version != room.Version {
			r.log.Debug("rejecting stale room write",
				"room_code", room.Code,
				"stored_version", current.Version,
				"given_version", room.Version)
			return ErrVersionConflict
		}

		return writeRecord(txn, next)
	})
	if err != nil {
		return domain.Room{}, mapStoreError(err)
	}

	return toRoom(next), nil
}

// Create persists a brand new room and its user-code index entries.
func (r RoomRepository) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}

	record := fromRoom(room)
	record.Version = 1

	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomKey(room.Code)); err == nil {
			return ErrRoomAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return writeRecord(txn, record)
	})
	if err != nil {
		return domain.Room{}, mapStoreError(err)
	}

	return toRoom(record), nil
}

func readRecord(txn *badger.Txn, key []byte, record *roomRecord) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := cbor.Unmarshal(val, record); err != nil {
			return fmt.Errorf("corrupt room record at %q: %w", key, err)
		}
		return nil
	})
}

func writeRecord(txn *badger.Txn, record roomRecord) error {
	data, err := cbor.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	if err := txn.Set(roomKey(domain.RoomCode(record.Code)), data); err != nil {
		return err
	}
	// Index entries are append-only, see GetByUserCode.
	for _, u := range record.Users {
		if err := txn.Set(userKey(u.UserCode), []byte(record.Code)); err != nil {
			return err
		}
	}
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrRoomNotFound
	}
	return err
}

func toRoom(record roomRecord) domain.Room {
	users := make([]domain.User, 0, len(record.Users))
	for _, u := range record.Users {
		users = append(users, domain.User{
			ID:        u.ID,
			UserCode:  u.UserCode,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			IsAdmin:   u.IsAdmin,
		})
	}
	return domain.Room{
		Code:     domain.RoomCode(record.Code),
		Name:     record.Name,
		ClosedOn: record.ClosedOn,
		Users:    users,
		Version:  record.Version,
	}
}

func fromRoom(room domain.Room) roomRecord {
	users := make([]userRecord, 0, len(room.Users))
	for _, u := range room.Users {
		users = append(users, userRecord{
			ID:        u.ID,
			UserCode:  u.UserCode,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			IsAdmin:   u.IsAdmin,
		})
	}
	return roomRecord{
		Code:     string(room.Code),
		Name:     room.Name,
		ClosedOn: room.ClosedOn,
		Users:    users,
		Version:  room.Version,
	}
}
