package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/cache"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend/profile"
)

// Type tags which comparison produced a score.
type Type string

const (
	TypeRoomFeatures   Type = "room_features"
	TypeTimePatterns   Type = "time_patterns"
	TypeUserBehavior   Type = "user_behavior"
	TypeBookingContext Type = "booking_context"
)

// SimTTL bounds how long a computed similarity stays memoized.
const SimTTL = time.Hour

// Score is an immutable similarity result. Both the score and the confidence
// always lie in [0,1].
type Score struct {
	Entity1ID    string             `json:"entity1_id"`
	Entity2ID    string             `json:"entity2_id"`
	Score        float64            `json:"similarity_score"`
	Type         Type               `json:"similarity_type"`
	Factors      map[string]float64 `json:"contributing_factors,omitempty"`
	Confidence   float64            `json:"confidence"`
	CalculatedAt time.Time          `json:"calculated_at"`
}

// Scorer computes multi-factor similarity between entities of the same kind.
// All methods degrade to a zero-score, zero-confidence result instead of
// returning errors for data-availability reasons.
type Scorer struct {
	log      *logger.Logger
	profiles *profile.Builder
	store    cache.Store
	weights  Weights
	now      func() time.Time
}

func NewScorer(log *logger.Logger, profiles *profile.Builder, store cache.Store, weights Weights) *Scorer {
	return &Scorer{
		log:      log.With("service", "SimilarityScorer"),
		profiles: profiles,
		store:    store,
		weights:  weights,
		now:      time.Now,
	}
}

// symmetricKey builds a cache key shared by (a,b) and (b,a).
func symmetricKey(prefix, a, b string) string {
	if a > b {
		a, b = b, a
	}
	return prefix + ":" + a + ":" + b
}

// RoomSimilarity scores two rooms over capacity, area, amenity features,
// usage patterns, and common-user overlap.
func (s *Scorer) RoomSimilarity(ctx context.Context, idA, idB uuid.UUID) *Score {
	key := symmetricKey("room_sim", idA.String(), idB.String())
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached
	}

	pa, errA := s.profiles.BuildRoomProfile(ctx, idA)
	pb, errB := s.profiles.BuildRoomProfile(ctx, idB)
	if errA != nil || errB != nil || pa == nil || pb == nil {
		// Missing profiles are zero-confidence input, never a failure.
		return s.empty(idA.String(), idB.String(), TypeRoomFeatures)
	}

	factors := map[string]float64{
		"capacity":     capacityFactor(pa.Capacity, pb.Capacity),
		"area":         areaFactor(pa.AreaID, pb.AreaID),
		"features":     vectorFactor(pa.FeatureVector, pb.FeatureVector),
		"usage":        vectorFactor(pa.UsageVector, pb.UsageVector),
		"user_overlap": userOverlapFactor(pa.CommonUsers, pb.CommonUsers),
	}

	w := s.weights.Room
	total := factors["capacity"]*w.Capacity +
		factors["area"]*w.Area +
		factors["features"]*w.Features +
		factors["usage"]*w.Usage +
		factors["user_overlap"]*w.UserOverlap

	score := &Score{
		Entity1ID:    idA.String(),
		Entity2ID:    idB.String(),
		Score:        clamp01(total),
		Type:         TypeRoomFeatures,
		Factors:      factors,
		Confidence:   roomConfidence(pa, pb),
		CalculatedAt: s.now().UTC(),
	}
	s.cacheSet(ctx, key, score)
	return score
}

func capacityFactor(capA, capB int) float64 {
	if capA == 0 || capB == 0 {
		// Neutral, low-information default.
		return 0.5
	}
	r := RatioMinMax(float64(capA), float64(capB))
	return capacityRatioScore(r)
}

func areaFactor(a, b uuid.UUID) float64 {
	if a != uuid.Nil && a == b {
		return 1
	}
	return 0
}

// vectorFactor treats an all-zero vector as absent data and returns the
// neutral 0.5 rather than a hard 0.
func vectorFactor(a, b []float64) float64 {
	if isZeroVector(a) || isZeroVector(b) {
		return 0.5
	}
	return Cosine(a, b)
}

func isZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func userOverlapFactor(a, b []uuid.UUID) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return Jaccard(uuidStrings(a), uuidStrings(b))
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// roomConfidence averages three tiered data-availability scores.
func roomConfidence(pa, pb *profile.RoomProfile) float64 {
	usageTier := 0.3
	switch {
	case pa.UsageFrequency > 10 && pb.UsageFrequency > 10:
		usageTier = 0.8
	case pa.UsageFrequency > 5 && pb.UsageFrequency > 5:
		usageTier = 0.6
	}

	featureTier := 0.4
	if pa.HasFeatureData() && pb.HasFeatureData() {
		featureTier = 0.9
	}

	descTier := 0.3
	if strings.TrimSpace(pa.Description) != "" && strings.TrimSpace(pb.Description) != "" {
		descTier = 0.7
	}

	return (usageTier + featureTier + descTier) / 3
}

// TimeSimilarity scores two time slots over hour proximity, weekday
// similarity, duration match, and historical usage pattern.
func (s *Scorer) TimeSimilarity(ctx context.Context, tA, tB time.Time, durA, durB float64) *Score {
	tokA := slotToken(tA, durA)
	tokB := slotToken(tB, durB)
	key := symmetricKey("time_sim", tokA, tokB)
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached
	}

	pa, errA := s.profiles.BuildTimeSlotProfile(ctx, tA, durA)
	pb, errB := s.profiles.BuildTimeSlotProfile(ctx, tB, durB)
	if errA != nil || errB != nil || pa == nil || pb == nil {
		return s.empty(tokA, tokB, TypeTimePatterns)
	}

	factors := map[string]float64{
		"hour_proximity": hourProximity(pa.StartHour, pb.StartHour),
		"day_similarity": daySimilarity(pa.DayOfWeek, pb.DayOfWeek),
		"duration_match": durationMatch(durA, durB),
		"usage_pattern":  usagePattern(pa, pb),
	}

	w := s.weights.Time
	total := factors["hour_proximity"]*w.HourProximity +
		factors["day_similarity"]*w.DaySimilarity +
		factors["duration_match"]*w.DurationMatch +
		factors["usage_pattern"]*w.UsagePattern

	score := &Score{
		Entity1ID:    tokA,
		Entity2ID:    tokB,
		Score:        clamp01(total),
		Type:         TypeTimePatterns,
		Factors:      factors,
		Confidence:   slotConfidence(pa, pb),
		CalculatedAt: s.now().UTC(),
	}
	s.cacheSet(ctx, key, score)
	return score
}

func slotToken(t time.Time, dur float64) string {
	return fmt.Sprintf("%d-%d-%.1f", int(t.Weekday()), t.Hour(), dur)
}

func hourProximity(h1, h2 int) float64 {
	v := 1 - CircularHourDiff(h1, h2)/12
	if v < 0 {
		return 0
	}
	return v
}

func daySimilarity(d1, d2 time.Weekday) float64 {
	if d1 == d2 {
		return 1.0
	}
	if isWeekend(d1) == isWeekend(d2) {
		return 0.5
	}
	return 0.2
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func durationMatch(d1, d2 float64) float64 {
	if d1 == 0 || d2 == 0 {
		return 0.5
	}
	return RatioMinMax(d1, d2)
}

func usagePattern(pa, pb *profile.TimeSlotProfile) float64 {
	popCloseness := 1 - absf(pa.PopularityScore-pb.PopularityScore)
	overlap := Jaccard(uuidStrings(pa.TypicalUsers), uuidStrings(pb.TypicalUsers))
	return (popCloseness + overlap) / 2
}

func slotConfidence(pa, pb *profile.TimeSlotProfile) float64 {
	switch {
	case pa.Occurrences > 0 && pb.Occurrences > 0:
		return 0.8
	case pa.Occurrences > 0 || pb.Occurrences > 0:
		return 0.5
	default:
		return 0.3
	}
}

// UserSimilarity scores two users' booking behavior. Either user having no
// history short-circuits to a zero score with zero confidence.
func (s *Scorer) UserSimilarity(ctx context.Context, idA, idB uuid.UUID) *Score {
	key := symmetricKey("user_sim", idA.String(), idB.String())
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached
	}

	pa, errA := s.profiles.BuildUserProfile(ctx, idA, 0)
	pb, errB := s.profiles.BuildUserProfile(ctx, idB, 0)
	if errA != nil || errB != nil || !pa.HasHistory() || !pb.HasHistory() {
		return s.empty(idA.String(), idB.String(), TypeUserBehavior)
	}

	factors := map[string]float64{
		"room_preference":      Jaccard(pa.RoomIDs(), pb.RoomIDs()),
		"time_preference":      Cosine(pa.HourHistogram[:], pb.HourHistogram[:]),
		"duration_preference":  RatioMinMax(pa.AvgDurationHours, pb.AvgDurationHours),
		"frequency_preference": RatioMinMax(pa.BookingsPerWeek, pb.BookingsPerWeek),
	}

	var total float64
	for _, v := range factors {
		total += v
	}

	score := &Score{
		Entity1ID:    idA.String(),
		Entity2ID:    idB.String(),
		Score:        clamp01(total / float64(len(factors))),
		Type:         TypeUserBehavior,
		Factors:      factors,
		Confidence:   userConfidence(pa.BookingCount, pb.BookingCount),
		CalculatedAt: s.now().UTC(),
	}
	s.cacheSet(ctx, key, score)
	return score
}

func userConfidence(countA, countB int) float64 {
	c := minf(float64(countA)/20, float64(countB)/20)
	return minf(c, 1)
}

// BookingSimilarity compares two booking requests across room, time, user,
// and purpose. Confidence is the fraction of factors that carried signal.
func (s *Scorer) BookingSimilarity(ctx context.Context, a, b *domain.Booking) *Score {
	if a == nil || b == nil {
		return s.empty("", "", TypeBookingContext)
	}

	factors := map[string]float64{
		"room":    s.RoomSimilarity(ctx, a.RoomID, b.RoomID).Score,
		"time":    s.TimeSimilarity(ctx, a.StartTime, b.StartTime, a.DurationHours(), b.DurationHours()).Score,
		"user":    s.UserSimilarity(ctx, a.UserID, b.UserID).Score,
		"purpose": purposeSimilarity(a.Purpose, b.Purpose),
	}

	w := s.weights.Booking
	total := factors["room"]*w.Room +
		factors["time"]*w.Time +
		factors["user"]*w.User +
		factors["purpose"]*w.Purpose

	nonZero := 0
	for _, v := range factors {
		if v > 0 {
			nonZero++
		}
	}

	return &Score{
		Entity1ID:    a.ID.String(),
		Entity2ID:    b.ID.String(),
		Score:        clamp01(total),
		Type:         TypeBookingContext,
		Factors:      factors,
		Confidence:   float64(nonZero) / float64(len(factors)),
		CalculatedAt: s.now().UTC(),
	}
}

func purposeSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return Jaccard(strings.Fields(a), strings.Fields(b))
}

func (s *Scorer) empty(id1, id2 string, typ Type) *Score {
	return &Score{
		Entity1ID:    id1,
		Entity2ID:    id2,
		Type:         typ,
		CalculatedAt: s.now().UTC(),
	}
}

func (s *Scorer) cacheGet(ctx context.Context, key string) *Score {
	if s.store == nil {
		return nil
	}
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	var score Score
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		s.log.Warn("bad cached similarity payload", "key", key, "error", err)
		return nil
	}
	return &score
}

func (s *Scorer) cacheSet(ctx context.Context, key string, score *Score) {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(score)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, key, string(raw), SimTTL); err != nil {
		s.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
