package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/BurkushTetiana/itmarathon/domain"
	"github.com/BurkushTetiana/itmarathon/errors"
	"github.com/BurkushTetiana/itmarathon/services"
)

// UserCodeHeader carries the caller's per-room user code. Possession of the
// code is the whole authentication scheme, there are no sessions.
const UserCodeHeader = "X-User-Code"

type RoomServer struct {
	roomService services.IRoomService
	log         *slog.Logger
}

func NewRoomServer(log *slog.Logger, roomService services.IRoomService) *RoomServer {
	return &RoomServer{roomService: roomService, log: log}
}

type deleteUserURI struct {
	UserID uint64 `uri:"userId" binding:"min=0"`
}

type roomCodeURI struct {
	RoomCode string `uri:"roomCode" binding:"required"`
}

type RoomResponse struct {
	RoomCode string         `json:"roomCode"`
	Name     string         `json:"name"`
	ClosedOn *time.Time     `json:"closedOn,omitempty"`
	Users    []UserResponse `json:"users"`
}

type UserResponse struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsAdmin   bool   `json:"isAdmin"`
}

type ErrorResponse struct {
	Kind     string           `json:"kind"`
	Failures []errors.Failure `json:"failures"`
}

func (s *RoomServer) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/rooms/my", s.getMyRoom)
	api.GET("/rooms/:roomCode", s.getRoom)
	api.DELETE("/rooms/my/users/:userId", s.deleteUser)
}

// deleteUser runs the removal workflow for the calling user code.
// All business rules live in the service; this handler only binds the
// request and renders the outcome.
func (s *RoomServer) deleteUser(c *gin.Context) {
	userCode := c.GetHeader(UserCodeHeader)
	if userCode == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Kind:     errors.KindBadRequest.String(),
			Failures: []errors.Failure{{Field: "UserCode", Message: "The X-User-Code header is required."}},
		})
		return
	}

	var uri deleteUserURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Kind:     errors.KindBadRequest.String(),
			Failures: []errors.Failure{{Field: "UserId", Message: "UserId must be a non-negative integer."}},
		})
		return
	}

	room, err := s.roomService.DeleteUser(c.Request.Context(), domain.DeleteUserCommand{
		UserCode: userCode,
		UserID:   uri.UserID,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRoomResponse(room))
}

func (s *RoomServer) getMyRoom(c *gin.Context) {
	userCode := c.GetHeader(UserCodeHeader)
	if userCode == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Kind:     errors.KindBadRequest.String(),
			Failures: []errors.Failure{{Field: "UserCode", Message: "The X-User-Code header is required."}},
		})
		return
	}

	room, err := s.roomService.GetRoomByUserCode(c.Request.Context(), userCode)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRoomResponse(room))
}

func (s *RoomServer) getRoom(c *gin.Context) {
	var uri roomCodeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Kind:     errors.KindBadRequest.String(),
			Failures: []errors.Failure{{Field: "RoomCode", Message: "RoomCode is required."}},
		})
		return
	}

	room, err := s.roomService.GetRoomByCode(c.Request.Context(), uri.RoomCode)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRoomResponse(room))
}

func (s *RoomServer) renderError(c *gin.Context, err error) {
	verr, ok := errors.AsValidation(err)
	if !ok {
		s.log.Error("unexpected failure", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(errors.HTTPStatus(err), ErrorResponse{
		Kind:     verr.Kind.String(),
		Failures: verr.Failures,
	})
}

func toRoomResponse(room domain.Room) RoomResponse {
	return RoomResponse{
		RoomCode: string(room.Code),
		Name:     room.Name,
		ClosedOn: room.ClosedOn,
		Users: lo.Map(room.Users, func(u domain.User, _ int) UserResponse {
			return UserResponse{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				IsAdmin:   u.IsAdmin,
			}
		}),
	}
}
