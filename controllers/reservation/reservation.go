package reservationControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/config"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/hours"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/notify"
)

var ErrAlreadyReserved = errors.New("table already reserved")

type CreateReservationRequest struct {
	TableNo      int       `json:"table_no" binding:"required"`
	DateTime     time.Time `json:"date_time" binding:"required"`
	Duration     int       `json:"duration"` // minutes
	PartySize    int       `json:"party_size" binding:"required,min=1"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Notes        string    `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var reservationMoves = map[models.ReservationStatus][]models.ReservationStatus{
	models.ReservationPending:   {models.ReservationConfirmed, models.ReservationCancelled},
	models.ReservationConfirmed: {models.ReservationCompleted, models.ReservationCancelled},
}

func alreadyReserved() error {
	return apperr.Conflict("table already reserved").
		With("code", "already_reserved").
		Wrap(ErrAlreadyReserved)
}

// window normalizes start to whole minutes in UTC and returns [start, end).
func window(start time.Time, minutes int) (time.Time, time.Time) {
	start = start.UTC().Truncate(time.Minute)
	return start, start.Add(time.Duration(minutes) * time.Minute)
}

// overlapping selects non-cancelled reservations intersecting [start, end).
func overlapping(db *gorm.DB, start, end time.Time) *gorm.DB {
	return db.Model(&models.Reservation{}).
		Where("status <> ?", models.ReservationCancelled).
		Where("date_time < ? AND end_time > ?", end, start)
}

// -------- Core Logic --------

// CreateReservation books a table. The table row is locked while the overlap
// check and insert run, so two bookings for one table are serialized.
func CreateReservation(env *app.Env, userID string, req CreateReservationRequest) (*models.Reservation, error) {
	if req.Duration == 0 {
		req.Duration = env.Config.Business.ReservationMinutes
	}
	if req.Duration < 0 || req.Duration > config.MaxReservationMinutes {
		return nil, apperr.BadRequest("duration must be between 1 and 360 minutes")
	}
	if req.PartySize < 1 {
		return nil, apperr.BadRequest("party_size must be at least 1")
	}
	if !req.DateTime.After(env.Clock()) {
		return nil, apperr.BadRequest("date_time must be in the future")
	}
	start, end := window(req.DateTime, req.Duration)

	res := models.Reservation{
		UserID:       userID,
		TableNo:      req.TableNo,
		DateTime:     start,
		EndTime:      end,
		Duration:     req.Duration,
		PartySize:    req.PartySize,
		Status:       models.ReservationPending,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Notes:        req.Notes,
	}

	err := env.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, "table_no = ?", req.TableNo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("table not found").With("table_no", req.TableNo)
			}
			return err
		}
		if !table.IsActive {
			return apperr.BadRequest("table is not in service")
		}
		if table.Capacity < req.PartySize {
			return apperr.BadRequest("party is larger than the table").With("capacity", table.Capacity)
		}

		var clash int64
		if err := overlapping(tx, start, end).Where("table_no = ?", req.TableNo).Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return alreadyReserved()
		}
		return tx.Create(&res).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"table_no": res.TableNo, "at": res.DateTime, "reserve_id": res.ID}).Info("table reserved")
	return &res, nil
}

// AvailableTables lists active tables seating partySize with nothing booked in [start, start+minutes).
func AvailableTables(db *gorm.DB, at time.Time, minutes, partySize int) ([]models.Table, error) {
	start, end := window(at, minutes)
	var tables []models.Table
	err := db.
		Where("is_active = ? AND capacity >= ?", true, partySize).
		Where("table_no NOT IN (?)", overlapping(db, start, end).Select("table_no")).
		Order("capacity, table_no").
		Find(&tables).Error
	return tables, err
}

// SetStatus moves a reservation along pending → confirmed → completed, or to cancelled.
func SetStatus(env *app.Env, id uint, target models.ReservationStatus, actor string, ownerOnly bool) (*models.Reservation, error) {
	var res models.Reservation
	changed := false
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&res, id).Error; err != nil {
			return err
		}
		if ownerOnly && res.UserID != actor {
			return apperr.NotFound("reservation not found")
		}
		if res.Status == target {
			return nil
		}
		ok := false
		for _, next := range reservationMoves[res.Status] {
			ok = ok || next == target
		}
		if !ok {
			return apperr.Conflict("cannot change reservation from " + string(res.Status) + " to " + string(target))
		}
		from := res.Status
		res.Status = target
		changed = true
		if err := tx.Model(&res).Update("status", target).Error; err != nil {
			return err
		}
		log.WithFields(log.Fields{"reserve_id": res.ID, "from": from, "to": target, "by": actor}).Info("reservation status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed && (target == models.ReservationConfirmed || target == models.ReservationCancelled) {
		notifyReservation(env, &res, actor)
	}
	return &res, nil
}

func notifyReservation(env *app.Env, res *models.Reservation, actor string) {
	if env.Notifier == nil {
		return
	}
	ev := notify.Event{
		Type:          notify.EventReservationStatus,
		ReservationID: res.ID,
		UserID:        res.UserID,
		Name:          res.CustomerName,
		Axis:          "reservation",
		NewStatus:     string(res.Status),
		ChangedBy:     actor,
		OccurredAt:    env.Clock(),
	}
	var user models.User
	if err := env.DB.First(&user, "id = ?", res.UserID).Error; err == nil {
		ev.Email = user.Email
		if ev.Name == "" {
			ev.Name = user.Name
		}
	}
	if err := env.Notifier.Publish(context.Background(), ev); err != nil {
		log.WithError(err).WithField("reserve_id", res.ID).Warn("notification not published")
	}
}

// -------- Handlers --------

// POST /api/reservations
func CreateReservationHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		res, err := CreateReservation(env, middleware.UserID(c), req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Reservation created", "reservation": res})
	}
}

// GET /api/reservations/available-tables?dateTime=&partySize=&duration=
func AvailableTablesHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		at, err := time.Parse(time.RFC3339, c.Query("dateTime"))
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("dateTime must be RFC3339"))
			return
		}
		partySize := 1
		if v := c.Query("partySize"); v != "" {
			if partySize, err = strconv.Atoi(v); err != nil || partySize < 1 {
				apperr.Respond(c, apperr.BadRequest("invalid partySize"))
				return
			}
		}
		minutes := env.Config.Business.ReservationMinutes
		if v := c.Query("duration"); v != "" {
			if minutes, err = strconv.Atoi(v); err != nil || minutes < 1 || minutes > config.MaxReservationMinutes {
				apperr.Respond(c, apperr.BadRequest("invalid duration"))
				return
			}
		}

		tables, err := AvailableTables(env.DB, at, minutes, partySize)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tables)
	}
}

// GET /api/reservations/my
func GetMyReservationsHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []models.Reservation
		if err := env.DB.Where("user_id = ?", middleware.UserID(c)).
			Order("date_time DESC").Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// PATCH /api/reservations/:id/cancel
func CancelReservationHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		res, err := SetStatus(env, id, models.ReservationCancelled, middleware.UserID(c), true)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled", "reservation": res})
	}
}

// GET /api/reservations?date=YYYY-MM-DD&status=
func GetReservationsHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Order("date_time")
		if d := c.Query("date"); d != "" {
			day, err := hours.ParseDate(d, env.Clock().Location())
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			q = q.Where("date_time >= ? AND date_time < ?", day.UTC(), day.AddDate(0, 0, 1).UTC())
		}
		if s := c.Query("status"); s != "" {
			q = q.Where("status = ?", s)
		}
		var list []models.Reservation
		if err := q.Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// PATCH /api/reservations/:id/status
func UpdateReservationStatusHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		target := models.ReservationStatus(req.Status)
		switch target {
		case models.ReservationPending, models.ReservationConfirmed, models.ReservationCancelled, models.ReservationCompleted:
		default:
			apperr.Respond(c, apperr.BadRequest("invalid reservation status"))
			return
		}
		res, err := SetStatus(env, id, target, middleware.UserID(c), false)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reservation updated", "reservation": res})
	}
}
