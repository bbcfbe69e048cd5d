// Package memory is an in-process implementation of the repositories. A
// single mutex guards every table, which makes each operation atomic in the
// same way the PostgreSQL row locks do.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alumnet/apiserver/types"
)

// DB holds every table of the in-memory backend.
type DB struct {
	mu sync.Mutex

	seq       int64
	users     map[int64]types.User
	jobs      map[int64]types.Job
	events    map[int64]types.Event
	posts     map[int64]types.Post
	messages  []types.Message
	donations []types.Donation

	now func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{
		users:  make(map[int64]types.User),
		jobs:   make(map[int64]types.Job),
		events: make(map[int64]types.Event),
		posts:  make(map[int64]types.Post),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *DB) summary(id int64) *types.UserSummary {
	user, ok := db.users[id]
	if !ok {
		return nil
	}
	s := user.Summary()
	return &s
}

// deleteUser removes a user and everything that belongs to them. Jobs and
// events they created survive with a nil owner.
func (db *DB) deleteUser(id int64) {
	delete(db.users, id)

	for jobID, job := range db.jobs {
		if job.PostedBy != nil && *job.PostedBy == id {
			job.PostedBy = nil
		}
		apps := job.Applications[:0:0]
		for _, app := range job.Applications {
			if app.StudentID != id {
				apps = append(apps, app)
			}
		}
		job.Applications = apps
		db.jobs[jobID] = job
	}

	for eventID, event := range db.events {
		if event.CreatedBy != nil && *event.CreatedBy == id {
			event.CreatedBy = nil
		}
		event.RSVPs = without(event.RSVPs, id)
		db.events[eventID] = event
	}

	for postID, post := range db.posts {
		if post.AuthorID == id {
			delete(db.posts, postID)
			continue
		}
		post.LikedBy = without(post.LikedBy, id)
		comments := post.Comments[:0:0]
		for _, c := range post.Comments {
			if c.AuthorID != id {
				comments = append(comments, c)
			}
		}
		post.Comments = comments
		db.posts[postID] = post
	}

	messages := db.messages[:0:0]
	for _, m := range db.messages {
		if m.SenderID != id && m.RecipientID != id {
			messages = append(messages, m)
		}
	}
	db.messages = messages
}

func without(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func cloneIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ComputeStats aggregates a user list the same way the SQL backend does.
func ComputeStats(users []types.User) types.Stats {
	stats := types.Stats{
		GraduationYearStats: []types.YearCount{},
		DepartmentStats:     []types.DepartmentCount{},
	}
	years := make(map[int]int)
	departments := make(map[string]int)

	for _, u := range users {
		stats.TotalUsers++
		switch u.Role {
		case types.RoleStudent:
			stats.TotalStudents++
		case types.RoleAlumni:
			stats.TotalAlumni++
			if u.GraduationYear != nil {
				years[*u.GraduationYear]++
			}
		case types.RoleAdmin:
			stats.TotalAdmins++
		}
		if u.Department != "" {
			departments[u.Department]++
		}
	}

	for year, count := range years {
		stats.GraduationYearStats = append(stats.GraduationYearStats, types.YearCount{Year: year, Count: count})
	}
	sort.Slice(stats.GraduationYearStats, func(i, j int) bool {
		return stats.GraduationYearStats[i].Year > stats.GraduationYearStats[j].Year
	})

	for dept, count := range departments {
		stats.DepartmentStats = append(stats.DepartmentStats, types.DepartmentCount{Department: dept, Count: count})
	}
	sort.Slice(stats.DepartmentStats, func(i, j int) bool {
		a, b := stats.DepartmentStats[i], stats.DepartmentStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Department < b.Department
	})
	return stats
}
