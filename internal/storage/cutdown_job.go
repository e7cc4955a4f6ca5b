package storage

import (
	"errors"
	"sort"
	"sync"

	"gorm.io/gorm"

	"gencut/internal/types"
)

// JobStore persists cutdown job state. The DB-backed implementation is used
// by the server; the in-memory one by tests and single-shot tooling.
type JobStore interface {
	Save(job *types.CutdownJob) error
	Get(jobId string) (*types.CutdownJob, error)
	History(limit int) ([]types.CutdownJob, error)
	MarkStale(reason string) (int64, error)
}

var ErrJobNotFound = errors.New("cutdown job not found")

type dbJobStore struct {
	db *gorm.DB
}

// NewDBJobStore returns a JobStore backed by the given gorm handle.
func NewDBJobStore(db *gorm.DB) JobStore {
	return &dbJobStore{db: db}
}

func (s *dbJobStore) Save(job *types.CutdownJob) error {
	if s.db == nil {
		return errors.New("database not initialized")
	}
	var existing types.CutdownJob
	result := s.db.Where("job_id = ?", job.JobId).First(&existing)
	if result.Error == nil {
		job.Id = existing.Id
		return s.db.Save(job).Error
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return s.db.Create(job).Error
	}
	return result.Error
}

func (s *dbJobStore) Get(jobId string) (*types.CutdownJob, error) {
	if s.db == nil {
		return nil, errors.New("database not initialized")
	}
	var job types.CutdownJob
	if err := s.db.Where("job_id = ?", jobId).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *dbJobStore) History(limit int) ([]types.CutdownJob, error) {
	if s.db == nil {
		return nil, errors.New("database not initialized")
	}
	var jobs []types.CutdownJob
	if err := s.db.Order("create_time desc").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkStale marks all running jobs as failed. Called on server startup so a
// crash never leaves zombie "running" rows behind.
func (s *dbJobStore) MarkStale(reason string) (int64, error) {
	if s.db == nil {
		return 0, errors.New("database not initialized")
	}
	result := s.db.Model(&types.CutdownJob{}).
		Where("status = ?", types.CutdownJobStatusRunning).
		Updates(map[string]interface{}{
			"status":      types.CutdownJobStatusFailed,
			"state":       string(types.StateFailed),
			"fail_reason": reason,
		})
	return result.RowsAffected, result.Error
}

type memoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]types.CutdownJob
	seq  int64
}

// NewMemoryJobStore returns a mutex-guarded in-memory JobStore.
func NewMemoryJobStore() JobStore {
	return &memoryJobStore{jobs: make(map[string]types.CutdownJob)}
}

func (s *memoryJobStore) Save(job *types.CutdownJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.jobs[job.JobId]; ok {
		job.Id = existing.Id
		job.CreateTime = existing.CreateTime
	} else {
		s.seq++
		job.Id = s.seq
		if job.CreateTime == 0 {
			job.CreateTime = s.seq
		}
	}
	s.jobs[job.JobId] = *job
	return nil
}

func (s *memoryJobStore) Get(jobId string) (*types.CutdownJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobId]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

func (s *memoryJobStore) History(limit int) ([]types.CutdownJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]types.CutdownJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreateTime > jobs[j].CreateTime })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *memoryJobStore) MarkStale(reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, job := range s.jobs {
		if job.Status == types.CutdownJobStatusRunning {
			job.Status = types.CutdownJobStatusFailed
			job.State = string(types.StateFailed)
			job.FailReason = reason
			s.jobs[id] = job
			count++
		}
	}
	return count, nil
}
