package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	errs "github.com/roomly/roomly-backend/internal/pkg/errors"
	"github.com/roomly/roomly-backend/internal/platform/cache"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

const (
	// ProfileTTL bounds how stale a cached profile may be.
	ProfileTTL = time.Hour

	// roomWindowDays is the booking history window for room profiles.
	roomWindowDays = 180
	// slotWindowDays is the history window for time-slot popularity.
	slotWindowDays = 90
	// DefaultUserWindowDays is the default trailing window for user profiles.
	DefaultUserWindowDays = 90

	userWindowLimit = 200
	slotScanLimit   = 500

	// utilizationDayHours is the assumed bookable span per day when deriving
	// a room's utilization rate.
	utilizationDayHours = 10.0
)

// Builder turns raw room/booking records into derived profiles, memoizing
// results through the cache facade. Missing underlying data is resolved with
// neutral defaults; only a missing room surfaces as ErrProfileUnavailable.
type Builder struct {
	log      *logger.Logger
	rooms    repos.RoomRepo
	bookings repos.BookingRepo
	store    cache.Store
	now      func() time.Time
}

func NewBuilder(log *logger.Logger, rooms repos.RoomRepo, bookings repos.BookingRepo, store cache.Store) *Builder {
	return &Builder{
		log:      log.With("service", "ProfileBuilder"),
		rooms:    rooms,
		bookings: bookings,
		store:    store,
		now:      time.Now,
	}
}

func RoomProfileKey(roomID uuid.UUID) string {
	return "room_profile:" + roomID.String()
}

func UserProfileKey(userID uuid.UUID, windowDays int) string {
	return fmt.Sprintf("user_profile:%s:%d", userID, windowDays)
}

func slotProfileKey(hour int, day time.Weekday, durationHours float64) string {
	return fmt.Sprintf("slot_profile:%d:%d:%.1f", day, hour, durationHours)
}

// BuildRoomProfile builds (or returns the cached) profile for one room.
func (b *Builder) BuildRoomProfile(ctx context.Context, roomID uuid.UUID) (*RoomProfile, error) {
	if roomID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing room id", errs.ErrProfileUnavailable)
	}

	key := RoomProfileKey(roomID)
	var cached RoomProfile
	if b.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	room, err := b.rooms.GetByID(dbctx.Context{Ctx: ctx}, roomID)
	if err != nil {
		b.log.Warn("room fetch failed", "room_id", roomID, "error", err)
		return nil, fmt.Errorf("%w: room %s: %v", errs.ErrProfileUnavailable, roomID, err)
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %s", errs.ErrProfileUnavailable, roomID)
	}

	since := b.now().AddDate(0, 0, -roomWindowDays)
	bookings, err := b.bookings.ListForRoomSince(dbctx.Context{Ctx: ctx}, roomID, since)
	if err != nil {
		// Usage stats degrade to empty; the room record itself is enough for
		// a feature-only profile.
		b.log.Warn("room bookings fetch failed", "room_id", roomID, "error", err)
		bookings = nil
	}

	p := b.buildRoomProfile(room, bookings)
	b.cacheSet(ctx, key, p)
	return p, nil
}

func (b *Builder) buildRoomProfile(room *domain.Room, bookings []*domain.Booking) *RoomProfile {
	p := &RoomProfile{
		RoomID:         room.ID,
		Name:           room.Name,
		Capacity:       room.Capacity,
		AreaID:         room.AreaID,
		Description:    room.Description,
		UsageFrequency: len(bookings),
		FeatureVector:  FeatureVectorForRoom(room),
		UsageVector:    UsageVectorForBookings(bookings),
		BuiltAt:        b.now().UTC(),
	}

	if len(bookings) == 0 {
		return p
	}

	var totalMinutes, totalHours float64
	hourCounts := map[int]int{}
	userSet := map[uuid.UUID]struct{}{}
	purposeSet := map[string]struct{}{}
	for _, bk := range bookings {
		if bk == nil {
			continue
		}
		totalMinutes += bk.DurationHours() * 60
		totalHours += bk.DurationHours()
		hourCounts[bk.StartTime.Hour()]++
		if bk.UserID != uuid.Nil {
			userSet[bk.UserID] = struct{}{}
		}
		if purpose := strings.TrimSpace(bk.Purpose); purpose != "" {
			purposeSet[purpose] = struct{}{}
		}
	}

	p.AvgBookingDurationMin = totalMinutes / float64(len(bookings))
	p.PeakUsageHours = peakHours(hourCounts, 3)
	p.CommonUsers = sortedUsers(userSet)
	p.BookingPurposes = sortedStrings(purposeSet)
	p.UtilizationRate = minf(totalHours/(roomWindowDays*utilizationDayHours), 1)
	return p
}

// BuildTimeSlotProfile derives a profile for the weekly slot the given start
// time falls into.
func (b *Builder) BuildTimeSlotProfile(ctx context.Context, start time.Time, durationHours float64) (*TimeSlotProfile, error) {
	hour := start.Hour()
	day := start.Weekday()

	key := slotProfileKey(hour, day, durationHours)
	var cached TimeSlotProfile
	if b.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	since := b.now().AddDate(0, 0, -slotWindowDays)
	recent, err := b.bookings.ListSince(dbctx.Context{Ctx: ctx}, since, slotScanLimit)
	if err != nil {
		b.log.Warn("slot bookings fetch failed", "hour", hour, "day", day, "error", err)
		recent = nil
	}

	p := buildSlotProfile(hour, day, durationHours, recent)
	b.cacheSet(ctx, key, p)
	return p, nil
}

func buildSlotProfile(hour int, day time.Weekday, durationHours float64, recent []*domain.Booking) *TimeSlotProfile {
	p := &TimeSlotProfile{
		StartHour:     hour,
		EndHour:       (hour + int(durationHours)) % 24,
		DayOfWeek:     day,
		DurationHours: durationHours,
		// No per-season history is tracked yet; assume uniform usage.
		SeasonalUsage: [4]float64{0.25, 0.25, 0.25, 0.25},
	}

	userSet := map[uuid.UUID]struct{}{}
	purposeSet := map[string]struct{}{}
	for _, bk := range recent {
		if bk == nil || bk.StartTime.Hour() != hour || bk.StartTime.Weekday() != day {
			continue
		}
		p.Occurrences++
		if bk.UserID != uuid.Nil {
			userSet[bk.UserID] = struct{}{}
		}
		if purpose := strings.TrimSpace(bk.Purpose); purpose != "" {
			purposeSet[purpose] = struct{}{}
		}
	}

	p.PopularityScore = minf(float64(p.Occurrences)/100.0, 1)
	p.ConflictProbability = minf(p.PopularityScore*1.5, 1)
	p.TypicalUsers = sortedUsers(userSet)
	p.CommonPurposes = sortedStrings(purposeSet)
	return p
}

// BuildUserProfile aggregates a user's trailing booking window. A user with
// no history gets the default zero profile, never an error.
func (b *Builder) BuildUserProfile(ctx context.Context, userID uuid.UUID, windowDays int) (*UserBookingProfile, error) {
	if windowDays <= 0 {
		windowDays = DefaultUserWindowDays
	}
	if userID == uuid.Nil {
		return defaultUserProfile(userID, windowDays, b.now().UTC()), nil
	}

	key := UserProfileKey(userID, windowDays)
	var cached UserBookingProfile
	if b.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	since := b.now().AddDate(0, 0, -windowDays)
	bookings, err := b.bookings.ListForUserSince(dbctx.Context{Ctx: ctx}, userID, since, userWindowLimit)
	if err != nil {
		b.log.Warn("user bookings fetch failed", "user_id", userID, "error", err)
		return defaultUserProfile(userID, windowDays, b.now().UTC()), nil
	}

	p := b.buildUserProfile(userID, windowDays, bookings)
	b.cacheSet(ctx, key, p)
	return p, nil
}

func defaultUserProfile(userID uuid.UUID, windowDays int, builtAt time.Time) *UserBookingProfile {
	return &UserBookingProfile{
		UserID:     userID,
		RoomUsage:  map[string]int{},
		WindowDays: windowDays,
		BuiltAt:    builtAt,
	}
}

func (b *Builder) buildUserProfile(userID uuid.UUID, windowDays int, bookings []*domain.Booking) *UserBookingProfile {
	p := defaultUserProfile(userID, windowDays, b.now().UTC())
	if len(bookings) == 0 {
		return p
	}

	p.BookingCount = len(bookings)

	var cancelled, noShow int
	var totalHours float64
	for _, bk := range bookings {
		if bk == nil {
			continue
		}
		p.RoomUsage[bk.RoomID.String()]++
		p.HourHistogram[bk.StartTime.Hour()]++
		p.DayHistogram[int(bk.StartTime.Weekday())]++
		dur := bk.DurationHours()
		p.DurationsHours = append(p.DurationsHours, dur)
		totalHours += dur
		if advance := bk.StartTime.Sub(bk.CreatedAt).Hours() / 24; advance > 0 {
			p.AdvanceBookingDays = append(p.AdvanceBookingDays, advance)
		}
		switch bk.Status {
		case domain.BookingStatusCancelled:
			cancelled++
		case domain.BookingStatusNoShow:
			noShow++
		}
	}

	total := float64(p.BookingCount)
	for i := range p.HourHistogram {
		p.HourHistogram[i] /= total
	}
	for i := range p.DayHistogram {
		p.DayHistogram[i] /= total
	}
	p.CancellationRate = float64(cancelled) / total
	p.NoShowRate = float64(noShow) / total
	p.AvgDurationHours = totalHours / total
	p.BookingsPerWeek = total / (float64(windowDays) / 7.0)
	return p
}

// peakHours returns the top-n booking start hours by count, most frequent
// first, ties broken by the lower hour of day.
func peakHours(counts map[int]int, n int) []int {
	hours := make([]int, 0, len(counts))
	for h := range counts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})
	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

func sortedUsers(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (b *Builder) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if b.store == nil {
		return false
	}
	raw, ok, err := b.store.Get(ctx, key)
	if err != nil {
		b.log.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		b.log.Warn("bad cached profile payload", "key", key, "error", err)
		return false
	}
	return true
}

func (b *Builder) cacheSet(ctx context.Context, key string, val interface{}) {
	if b.store == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := b.store.Set(ctx, key, string(raw), ProfileTTL); err != nil {
		b.log.Warn("cache set failed", "key", key, "error", err)
	}
}
