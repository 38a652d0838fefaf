package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/talentbridge/profile-matcher/internal/dto"
	"github.com/talentbridge/profile-matcher/internal/matching"
	"github.com/talentbridge/profile-matcher/internal/model"
	"github.com/talentbridge/profile-matcher/internal/repository"
	"github.com/talentbridge/profile-matcher/internal/service"
	"github.com/talentbridge/profile-matcher/internal/util"
	"go.uber.org/zap"
)

// ErrAlreadyMatched signals the idempotence guard: the JD was already
// compared and ranked, so the run returns an empty result set instead of
// recomputing and duplicating persisted records.
var ErrAlreadyMatched = errors.New("jd already compared and ranked")

const (
	storedScoreDigits  = 4
	displayScoreDigits = 2

	// candidatePoolSize caps the nearest-neighbor prefilter for semantic runs.
	candidatePoolSize = 50
)

// JDStore, ProfileStore and MatchStore are the persistence surfaces the
// match use case depends on. The gorm repositories implement them; tests
// substitute stubs.
type JDStore interface {
	FindByID(id string) (*model.JD, error)
	GetAll() ([]model.JD, error)
	Update(jd *model.JD) error
	SearchByEmbedding(embedding pgvector.Vector, topK int) ([]model.JD, error)
	CountJDs() (int64, error)
}

type ProfileStore interface {
	FindByID(id string) (*model.Profile, error)
	GetAll() ([]model.Profile, error)
	Update(p *model.Profile) error
	Search(filter repository.ProfileFilter, page, pageSize int) ([]model.Profile, int64, error)
	SearchByEmbedding(embedding pgvector.Vector, topK int) ([]model.Profile, error)
	CountProfiles() (int64, error)
}

type MatchStore interface {
	SaveBatch(records []model.MatchResult, jd *model.JD) error
	FindByJD(jdID string) ([]model.MatchResult, error)
	Stats() (*repository.MatchStats, error)
}

type MatchUsecase struct {
	jdRepo      JDStore
	profileRepo ProfileStore
	matchRepo   MatchStore
	gemini      service.GeminiServiceInterface
	matcher     *matching.Matcher
	logger      *zap.Logger
}

func NewMatchUsecase(
	jdRepo JDStore,
	profileRepo ProfileStore,
	matchRepo MatchStore,
	gemini service.GeminiServiceInterface,
	matcher *matching.Matcher,
	logger *zap.Logger,
) *MatchUsecase {
	return &MatchUsecase{
		jdRepo:      jdRepo,
		profileRepo: profileRepo,
		matchRepo:   matchRepo,
		gemini:      gemini,
		matcher:     matcher,
		logger:      logger,
	}
}

// documentSource adapts a stored entity to the matching.Source capability.
type documentSource struct {
	id        string
	identity  string
	text      string
	embedding string
}

func (d documentSource) ID() string              { return d.id }
func (d documentSource) Identity() string        { return d.identity }
func (d documentSource) RawText() string         { return d.text }
func (d documentSource) StoredEmbedding() string { return d.embedding }

func (uc *MatchUsecase) jdSource(jd *model.JD) documentSource {
	return documentSource{
		id:        jd.ID.String(),
		identity:  jd.ID.String(),
		text:      uc.resolveText(jd.ExtractedText, jd.FilePath, jd.ID.String()),
		embedding: jd.EmbeddingJSON,
	}
}

func (uc *MatchUsecase) profileSource(p *model.Profile) documentSource {
	return documentSource{
		id:        p.ID.String(),
		identity:  p.EmpID,
		text:      uc.resolveText(p.ExtractedText, p.ResumePath, p.EmpID),
		embedding: p.EmbeddingJSON,
	}
}

// resolveText prefers the text captured at upload time and falls back to
// re-extracting from the stored file. A failed extraction yields empty text
// so the normalization gate skips the document instead of aborting the run.
func (uc *MatchUsecase) resolveText(stored, path, id string) string {
	if stored != "" {
		return stored
	}
	if path == "" {
		return ""
	}
	text, err := util.ExtractText(path)
	if err != nil {
		uc.logger.Warn("document extraction failed",
			zap.String("id", id), zap.String("path", path), zap.Error(err))
		return ""
	}
	return text
}

// MatchJDToProfiles runs the JD-against-all-consultants batch. When the JD
// is already compared and ranked it short-circuits with ErrAlreadyMatched
// and an empty top_matches payload, never rescoring.
func (uc *MatchUsecase) MatchJDToProfiles(ctx context.Context, jdID string) (*dto.MatchResponseDTO, error) {
	jd, err := uc.jdRepo.FindByID(jdID)
	if err != nil {
		return nil, fmt.Errorf("jd %s: %w", jdID, err)
	}

	if jd.Compared && jd.Ranked {
		uc.logger.Info("jd already matched, skipping run", zap.String("jd_id", jdID))
		return &dto.MatchResponseDTO{
			Message:    "JD already matched",
			TopMatches: []dto.MatchEntryDTO{},
		}, ErrAlreadyMatched
	}

	profiles, err := uc.candidateProfiles(jd)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	candidates := make([]matching.Source, 0, len(profiles))
	byID := make(map[string]*model.Profile, len(profiles))
	for i := range profiles {
		candidates = append(candidates, uc.profileSource(&profiles[i]))
		byID[profiles[i].ID.String()] = &profiles[i]
	}

	results, err := uc.matcher.MatchBatch(ctx, uc.jdSource(jd), candidates, matching.MatchTypeJDToResume)
	if err != nil {
		return nil, err
	}

	// every scored pair is persisted; the response carries only the top N
	records, err := uc.buildRecords(results, func(r matching.Result) (uuid.UUID, uuid.UUID) {
		return jd.ID, byID[r.CandidateID].ID
	}, matching.MatchTypeJDToResume)
	if err != nil {
		return nil, err
	}
	if err := uc.matchRepo.SaveBatch(records, jd); err != nil {
		return nil, err
	}

	top := uc.matcher.Top(results)
	entries := make([]dto.MatchEntryDTO, 0, len(top))
	for _, r := range top {
		profile := byID[r.CandidateID]
		entries = append(entries, dto.MatchEntryDTO{
			CandidateID: r.CandidateID,
			EmpID:       profile.EmpID,
			Name:        profile.Name,
			Vertical:    profile.Vertical,
			Score:       matching.RoundScore(r.Score, displayScoreDigits),
			Label:       r.Label.String(),
			Explanation: r.Explanation,
			Latency:     r.Latency,
		})
	}
	return &dto.MatchResponseDTO{TopMatches: entries}, nil
}

// MatchResumeToJDs is the reverse batch: one consultant profile against
// every open JD.
func (uc *MatchUsecase) MatchResumeToJDs(ctx context.Context, profileID string) (*dto.MatchResponseDTO, error) {
	profile, err := uc.profileRepo.FindByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profileID, err)
	}

	jds, err := uc.candidateJDs(profile)
	if err != nil {
		return nil, fmt.Errorf("load jds: %w", err)
	}

	candidates := make([]matching.Source, 0, len(jds))
	byID := make(map[string]*model.JD, len(jds))
	for i := range jds {
		candidates = append(candidates, uc.jdSource(&jds[i]))
		byID[jds[i].ID.String()] = &jds[i]
	}

	results, err := uc.matcher.MatchBatch(ctx, uc.profileSource(profile), candidates, matching.MatchTypeResumeToJD)
	if err != nil {
		return nil, err
	}

	records, err := uc.buildRecords(results, func(r matching.Result) (uuid.UUID, uuid.UUID) {
		return byID[r.CandidateID].ID, profile.ID
	}, matching.MatchTypeResumeToJD)
	if err != nil {
		return nil, err
	}
	if err := uc.matchRepo.SaveBatch(records, nil); err != nil {
		return nil, err
	}

	top := uc.matcher.Top(results)
	entries := make([]dto.MatchEntryDTO, 0, len(top))
	for _, r := range top {
		jd := byID[r.CandidateID]
		entries = append(entries, dto.MatchEntryDTO{
			CandidateID: r.CandidateID,
			JobTitle:    jd.JobTitle,
			Score:       matching.RoundScore(r.Score, displayScoreDigits),
			Label:       r.Label.String(),
			Explanation: r.Explanation,
			Latency:     r.Latency,
		})
	}
	return &dto.MatchResponseDTO{TopMatches: entries}, nil
}

// MatchOneToOne compares a single JD/profile pair. Unlike the batch modes,
// an unreadable document surfaces as an error to the caller.
func (uc *MatchUsecase) MatchOneToOne(ctx context.Context, jdID, profileID string) (*dto.OneToOneResponseDTO, error) {
	jd, err := uc.jdRepo.FindByID(jdID)
	if err != nil {
		return nil, fmt.Errorf("jd %s: %w", jdID, err)
	}
	profile, err := uc.profileRepo.FindByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profileID, err)
	}

	result, err := uc.matcher.MatchOne(ctx, uc.jdSource(jd), uc.profileSource(profile))
	if err != nil {
		return nil, err
	}

	records, err := uc.buildRecords([]matching.Result{*result}, func(matching.Result) (uuid.UUID, uuid.UUID) {
		return jd.ID, profile.ID
	}, matching.MatchTypeOneToOne)
	if err != nil {
		return nil, err
	}
	if err := uc.matchRepo.SaveBatch(records, nil); err != nil {
		return nil, err
	}

	return &dto.OneToOneResponseDTO{
		Score:       matching.RoundScore(result.Score, displayScoreDigits),
		Label:       result.Label.String(),
		Explanation: result.Explanation,
		Latency:     result.Latency,
	}, nil
}

// candidateProfiles narrows the candidate pool with a pgvector
// nearest-neighbor search when the semantic strategy can use it, falling
// back to a full scan.
func (uc *MatchUsecase) candidateProfiles(jd *model.JD) ([]model.Profile, error) {
	if uc.matcher.Strategy() == matching.StrategySemantic && jd.EmbeddingJSON != "" {
		profiles, err := uc.profileRepo.SearchByEmbedding(jd.Embedding, candidatePoolSize)
		if err == nil && len(profiles) > 0 {
			return profiles, nil
		}
		if err != nil {
			uc.logger.Warn("profile prefilter failed, scanning all profiles",
				zap.String("jd_id", jd.ID.String()), zap.Error(err))
		}
	}
	return uc.profileRepo.GetAll()
}

func (uc *MatchUsecase) candidateJDs(profile *model.Profile) ([]model.JD, error) {
	if uc.matcher.Strategy() == matching.StrategySemantic && profile.EmbeddingJSON != "" {
		jds, err := uc.jdRepo.SearchByEmbedding(profile.Embedding, candidatePoolSize)
		if err == nil && len(jds) > 0 {
			return jds, nil
		}
		if err != nil {
			uc.logger.Warn("jd prefilter failed, scanning all jds",
				zap.String("emp_id", profile.EmpID), zap.Error(err))
		}
	}
	return uc.jdRepo.GetAll()
}

// MatchResults lists every persisted record for a JD, best score first.
func (uc *MatchUsecase) MatchResults(jdID string) ([]model.MatchResult, error) {
	if _, err := uc.jdRepo.FindByID(jdID); err != nil {
		return nil, fmt.Errorf("jd %s: %w", jdID, err)
	}
	return uc.matchRepo.FindByJD(jdID)
}

func (uc *MatchUsecase) buildRecords(results []matching.Result, ids func(matching.Result) (jdID, profileID uuid.UUID), matchType string) ([]model.MatchResult, error) {
	records := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		payload, err := json.Marshal(r.Explanation)
		if err != nil {
			return nil, fmt.Errorf("encode explanation: %w", err)
		}
		jdID, profileID := ids(r)
		records = append(records, model.MatchResult{
			JDID:        jdID,
			ProfileID:   profileID,
			Score:       matching.RoundScore(r.Score, storedScoreDigits),
			Label:       r.Label.String(),
			Explanation: string(payload),
			MatchType:   matchType,
			Latency:     r.Latency,
		})
	}
	return records, nil
}

// RefreshEmbeddings (re)computes and stores dense vectors for every JD and
// profile that does not have one yet. Failures are logged per document and
// do not stop the sweep.
func (uc *MatchUsecase) RefreshEmbeddings(ctx context.Context) (int, error) {
	if uc.gemini == nil {
		return 0, fmt.Errorf("no embedding service configured")
	}
	updated := 0

	jds, err := uc.jdRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("load jds: %w", err)
	}
	for i := range jds {
		if jds[i].EmbeddingJSON != "" {
			continue
		}
		text := uc.resolveText(jds[i].ExtractedText, jds[i].FilePath, jds[i].ID.String())
		if !uc.embedInto(ctx, text, jds[i].ID.String(), &jds[i].Embedding, &jds[i].EmbeddingJSON) {
			continue
		}
		if err := uc.jdRepo.Update(&jds[i]); err != nil {
			uc.logger.Warn("store jd embedding failed", zap.String("id", jds[i].ID.String()), zap.Error(err))
			continue
		}
		updated++
	}

	profiles, err := uc.profileRepo.GetAll()
	if err != nil {
		return updated, fmt.Errorf("load profiles: %w", err)
	}
	for i := range profiles {
		if profiles[i].EmbeddingJSON != "" {
			continue
		}
		text := uc.resolveText(profiles[i].ExtractedText, profiles[i].ResumePath, profiles[i].EmpID)
		if !uc.embedInto(ctx, text, profiles[i].EmpID, &profiles[i].Embedding, &profiles[i].EmbeddingJSON) {
			continue
		}
		if err := uc.profileRepo.Update(&profiles[i]); err != nil {
			uc.logger.Warn("store profile embedding failed", zap.String("emp_id", profiles[i].EmpID), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

func (uc *MatchUsecase) embedInto(ctx context.Context, text, id string, vec *pgvector.Vector, jsonOut *string) bool {
	cleaned, err := matching.CleanText(text)
	if err != nil {
		uc.logger.Warn("skipping embedding for unreadable document",
			zap.String("id", id), zap.Error(err))
		return false
	}
	values, err := uc.gemini.Encode(ctx, cleaned)
	if err != nil {
		uc.logger.Warn("embedding generation failed", zap.String("id", id), zap.Error(err))
		return false
	}
	payload, err := json.Marshal(values)
	if err != nil {
		uc.logger.Warn("embedding encode failed", zap.String("id", id), zap.Error(err))
		return false
	}
	*vec = pgvector.NewVector(values)
	*jsonOut = string(payload)
	return true
}

// SearchProfiles is the attribute search behind the recruiter dashboard.
func (uc *MatchUsecase) SearchProfiles(filter repository.ProfileFilter, page, pageSize int) ([]dto.ProfileDTO, int64, error) {
	profiles, total, err := uc.profileRepo.Search(filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, dto.ProfileDTO{
			ID:              p.ID.String(),
			EmpID:           p.EmpID,
			Name:            p.Name,
			Vertical:        p.Vertical,
			Skills:          p.Skills,
			ExperienceYears: p.ExperienceYears,
		})
	}
	return out, total, nil
}

// AgentHealth aggregates matcher activity for the dashboard.
func (uc *MatchUsecase) AgentHealth() (*dto.AgentHealthDTO, error) {
	stats, err := uc.matchRepo.Stats()
	if err != nil {
		return nil, err
	}
	jdCount, err := uc.jdRepo.CountJDs()
	if err != nil {
		return nil, err
	}
	profileCount, err := uc.profileRepo.CountProfiles()
	if err != nil {
		return nil, err
	}

	latency := make(map[string]float64, len(stats.AvgLatency))
	for matchType, avg := range stats.AvgLatency {
		latency[matchType] = matching.RoundScore(avg, displayScoreDigits)
	}

	return &dto.AgentHealthDTO{
		TotalMatches:  stats.TotalMatches,
		JDToResume:    stats.CountByType[matching.MatchTypeJDToResume],
		ResumeToJD:    stats.CountByType[matching.MatchTypeResumeToJD],
		OneToOne:      stats.CountByType[matching.MatchTypeOneToOne],
		LatencyStats:  latency,
		JDUploaded:    jdCount,
		Profiles:      profileCount,
		AvgMatchScore: matching.RoundScore(stats.AvgScore, displayScoreDigits),
	}, nil
}
