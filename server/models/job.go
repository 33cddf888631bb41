package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

// Job is a unit of async work e.g. an SMS delivery of a panic alert,
// or a periodic db backup. Workers claim jobs to process them.
type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status"`
}

// MarkAsClaimed atomically flips the claimed flag so only one worker
// processes the job; reports whether this caller won the claim.
func (job *Job) MarkAsClaimed() (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", job.ID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateJob enqueues a job without any uniqueness check.
func CreateJob(name, handler, args string) error {
	enqueuedStatus, err := FindJobStatus(ENQUEUED_JOB)
	if err != nil {
		return err
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		JobStatusID: enqueuedStatus.ID,
	}).Error
}

// CreateUniqueJobByName enqueues a job unless another job with the same
// name is already enqueued or in-progress, in which case ErrDuplicateJob
// is returned.
func CreateUniqueJobByName(name, handler, args string) error {
	queuedStatuses := []JobStatus{}
	err := db.Where("name IN ?", []string{ENQUEUED_JOB, IN_PROGRESS_JOB}).Find(&queuedStatuses).Error
	if err != nil {
		return err
	}

	statusIDs := []uint{}
	var enqueuedStatus JobStatus
	for _, jobStatus := range queuedStatuses {
		statusIDs = append(statusIDs, jobStatus.ID)
		if jobStatus.Name == ENQUEUED_JOB {
			enqueuedStatus = jobStatus
		}
	}

	res := db.Where("name = ? AND job_status_id IN ?", name, statusIDs).First(&Job{})
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return res.Error
	}

	if res.RowsAffected > 0 {
		return ErrDuplicateJob
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		JobStatusID: enqueuedStatus.ID,
	}).Error
}

// LastJob returns the most recent job with the given status & claim state.
func LastJob(status string, claimed bool) (*Job, error) {
	job := Job{}
	err := db.Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ? AND claimed = ?",
		status, claimed).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// LastJobLastUpdated returns the last job of the given status whose
// updated_at is at least 'minutesAgo' minutes in the past.
//
// NOTE: the datetime expression is sqlite-specific.
func LastJobLastUpdated(minutesAgo uint, status string) (*Job, error) {
	jobStatus, err := FindJobStatus(status)
	if err != nil {
		return nil, err
	}

	job := Job{}
	err = db.Where(
		fmt.Sprintf("job_status_id = ? AND datetime(updated_at, '+%v minute') <= datetime('now')", minutesAgo),
		jobStatus.ID,
	).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}
