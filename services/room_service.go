//go:generate go run go.uber.org/mock/mockgen -source=room_service.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/BurkushTetiana/itmarathon/domain"
	"github.com/BurkushTetiana/itmarathon/errors"
	"github.com/BurkushTetiana/itmarathon/repositories"
)

type IRoomService interface {
	DeleteUser(ctx context.Context, cmd domain.DeleteUserCommand) (domain.Room, error)
	GetRoomByUserCode(ctx context.Context, userCode string) (domain.Room, error)
	GetRoomByCode(ctx context.Context, roomCode string) (domain.Room, error)
}

type RoomService struct {
	roomRepository repositories.IRoomRepository
	log            *slog.Logger
}

func NewRoomService(repo repositories.IRoomRepository, log *slog.Logger) IRoomService {
	return &RoomService{roomRepository: repo, log: log}
}

// DeleteUser runs the ordered removal chain and stops at the first rule that
// fails. Persistence happens exactly once, after every rule passed and the
// aggregate accepted the mutation.
func (s *RoomService) DeleteUser(ctx context.Context, cmd domain.DeleteUserCommand) (domain.Room, error) {
	// 1. Resolve the room owning the caller's user code.
	room, err := s.roomRepository.GetByUserCode(ctx, cmd.UserCode)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Room{}, ctx.Err()
		}
		return domain.Room{}, errors.NewNotFound("UserCode",
			"User with the specified UserCode was not found.")
	}

	// 2. Only the room administrator may delete users.
	currentUser, ok := room.UserByCode(cmd.UserCode)
	if !ok || !currentUser.IsAdmin {
		return domain.Room{}, errors.NewForbidden("UserCode",
			"Only the room administrator can delete users.")
	}

	// 3. The target must belong to the same room.
	if _, ok := room.UserByID(cmd.UserID); !ok {
		return domain.Room{}, errors.NewBadRequest("UserId",
			"User with the specified Id does not belong to the room.")
	}

	// 4. Self-removal only. Together with rule 2 this means the only
	// deletable account is the acting administrator's own; the product
	// behaves this way on purpose, do not widen it here.
	if currentUser.ID != cmd.UserID {
		return domain.Room{}, errors.NewBadRequest("UserId",
			"You can only delete your own account.")
	}

	// 5. Closed rooms accept no membership changes.
	if room.IsClosed() {
		return domain.Room{}, errors.NewBadRequest("Room",
			"The room is already closed. Cannot delete user.")
	}

	// 6. Aggregate mutation. It re-checks 3 and 5 on its own.
	if err := room.DeleteUser(cmd.UserID); err != nil {
		return domain.Room{}, mapDomainError(err)
	}

	// 7. Persist once.
	if _, err := s.roomRepository.Update(ctx, room); err != nil {
		if ctx.Err() != nil {
			return domain.Room{}, ctx.Err()
		}
		s.log.Error("room update rejected", "room_code", room.Code, "error", err)
		return domain.Room{}, errors.NewBadRequest("", err.Error())
	}

	// 8. Re-fetch so the caller observes what was durably committed,
	// not the in-memory copy.
	updated, err := s.roomRepository.GetByUserCode(ctx, cmd.UserCode)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Room{}, ctx.Err()
		}
		return domain.Room{}, errors.NewNotFound("UserCode",
			"User with the specified UserCode was not found.")
	}

	s.log.Info("user deleted from room", "room_code", updated.Code, "user_id", cmd.UserID)
	return updated, nil
}

func (s *RoomService) GetRoomByUserCode(ctx context.Context, userCode string) (domain.Room, error) {
	room, err := s.roomRepository.GetByUserCode(ctx, userCode)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Room{}, ctx.Err()
		}
		return domain.Room{}, errors.NewNotFound("UserCode",
			"User with the specified UserCode was not found.")
	}
	return room, nil
}

func (s *RoomService) GetRoomByCode(ctx context.Context, roomCode string) (domain.Room, error) {
	room, err := s.roomRepository.GetByRoomCode(ctx, roomCode)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Room{}, ctx.Err()
		}
		return domain.Room{}, errors.NewNotFound("RoomCode",
			"Room with the specified RoomCode was not found.")
	}
	return room, nil
}

// mapDomainError converts aggregate sentinels into the boundary variant.
// They only fire when a concurrent writer changed the room between the
// chain's checks and the mutation.
func mapDomainError(err error) error {
	switch {
	case stderrors.Is(err, domain.ErrRoomClosed):
		return errors.NewBadRequest("Room",
			"The room is already closed. Cannot delete user.")
	case stderrors.Is(err, domain.ErrUserNotFound):
		return errors.NewBadRequest("UserId",
			"User with the specified Id does not belong to the room.")
	default:
		return errors.NewBadRequest("", err.Error())
	}
}
