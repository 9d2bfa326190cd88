package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/BurkushTetiana/itmarathon/domain"
	"github.com/BurkushTetiana/itmarathon/errors"
	"github.com/BurkushTetiana/itmarathon/mocks"
	"github.com/BurkushTetiana/itmarathon/repositories"
)

func testRoom() domain.Room {
	return domain.Room{
		Code:    "XMAS24",
		Name:    "Secret Santa 2024",
		Version: 1,
		Users: []domain.User{
			{ID: 1, UserCode: "A1", FirstName: "Alice", LastName: "Martin", IsAdmin: true},
			{ID: 2, UserCode: "B2", FirstName: "Bob", LastName: "Durand"},
		},
	}
}

func newService(repo repositories.IRoomRepository) IRoomService {
	return NewRoomService(repo, slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func requireKind(t *testing.T, err error, kind errors.Kind, field string) *errors.ValidationError {
	t.Helper()
	verr, ok := errors.AsValidation(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	require.Equal(t, kind, verr.Kind)
	require.Len(t, verr.Failures, 1)
	require.Equal(t, field, verr.Failures[0].Field)
	return verr
}

func TestRoomService_DeleteUser_AdminDeletesOwnAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	room := testRoom()
	var persisted domain.Room

	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "A1").Return(room, nil)
	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.Room) (domain.Room, error) {
			persisted = r
			persisted.Version = r.Version + 1
			return persisted, nil
		})
	// The success value is the re-fetched room, not the in-memory one.
	mockRepo.EXPECT().
		GetByUserCode(gomock.Any(), "A1").
		DoAndReturn(func(_ context.Context, _ string) (domain.Room, error) {
			return persisted, nil
		})

	updated, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "A1", UserID: 1})

	req.NoError(err)
	req.Len(updated.Users, 1)
	req.Equal(uint64(2), updated.Users[0].ID)
	req.Equal("Bob", updated.Users[0].FirstName)
}

func TestRoomService_DeleteUser_UnknownUserCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	mockRepo.EXPECT().
		GetByUserCode(gomock.Any(), "non_existent_code").
		Return(domain.Room{}, repositories.ErrRoomNotFound)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "non_existent_code", UserID: 1})

	verr := requireKind(t, err, errors.KindNotFound, "UserCode")
	require.Contains(t, verr.Failures[0].Message, "not found")
}

func TestRoomService_DeleteUser_NotAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "B2").Return(testRoom(), nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "B2", UserID: 2})

	verr := requireKind(t, err, errors.KindForbidden, "UserCode")
	require.Contains(t, verr.Failures[0].Message, "administrator")
}

func TestRoomService_DeleteUser_TargetNotInRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	// Id 7 exists in some other room, not in this one; same outcome as a
	// completely unknown id.
	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "A1").Return(testRoom(), nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "A1", UserID: 7})

	verr := requireKind(t, err, errors.KindBadRequest, "UserId")
	require.Contains(t, verr.Failures[0].Message, "does not belong")
}

func TestRoomService_DeleteUser_OtherUserForbiddenPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	// Admin A1 targets Bob: rule 4 rejects anything but the caller's own id.
	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "A1").Return(testRoom(), nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "A1", UserID: 2})

	verr := requireKind(t, err, errors.KindBadRequest, "UserId")
	require.Contains(t, verr.Failures[0].Message, "your own account")
}

func TestRoomService_DeleteUser_ClosedRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	room := testRoom()
	closedOn := time.Now().UTC().Add(-24 * time.Hour)
	room.ClosedOn = &closedOn

	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "A1").Return(room, nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "A1", UserID: 1})

	verr := requireKind(t, err, errors.KindBadRequest, "Room")
	require.Contains(t, verr.Failures[0].Message, "already closed")
}

func TestRoomService_DeleteUser_UpdateRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "A1").Return(testRoom(), nil)
	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		Return(domain.Room{}, repositories.ErrVersionConflict)

	_, err := svc.DeleteUser(context.Background(), domain.DeleteUserCommand{UserCode: "A1", UserID: 1})

	// Persistence rejections come back as BadRequest with no field tag.
	verr := requireKind(t, err, errors.KindBadRequest, "")
	require.Contains(t, verr.Failures[0].Message, "concurrently")
}

func TestRoomService_DeleteUser_SurfacesCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockRepo.EXPECT().
		GetByUserCode(gomock.Any(), "A1").
		Return(domain.Room{}, context.Canceled)

	_, err := svc.DeleteUser(ctx, domain.DeleteUserCommand{UserCode: "A1", UserID: 1})

	// Cancellation must not be dressed up as NotFound.
	req.ErrorIs(err, context.Canceled)
	_, ok := errors.AsValidation(err)
	req.False(ok)
}

func TestRoomService_GetRoomByUserCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	mockRepo.EXPECT().GetByUserCode(gomock.Any(), "A1").Return(testRoom(), nil)

	room, err := svc.GetRoomByUserCode(context.Background(), "A1")
	req.NoError(err)
	req.Equal(domain.RoomCode("XMAS24"), room.Code)

	mockRepo.EXPECT().
		GetByUserCode(gomock.Any(), "nope").
		Return(domain.Room{}, repositories.ErrRoomNotFound)

	_, err = svc.GetRoomByUserCode(context.Background(), "nope")
	requireKind(t, err, errors.KindNotFound, "UserCode")
}

func TestRoomService_GetRoomByCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	mockRepo := mocks.NewMockIRoomRepository(ctrl)
	svc := newService(mockRepo)

	mockRepo.EXPECT().GetByRoomCode(gomock.Any(), "XMAS24").Return(testRoom(), nil)

	room, err := svc.GetRoomByCode(context.Background(), "XMAS24")
	req.NoError(err)
	req.Len(room.Users, 2)

	mockRepo.EXPECT().
		GetByRoomCode(gomock.Any(), "nope").
		Return(domain.Room{}, repositories.ErrRoomNotFound)

	_, err = svc.GetRoomByCode(context.Background(), "nope")
	requireKind(t, err, errors.KindNotFound, "RoomCode")
}
