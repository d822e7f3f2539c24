package models

import (
	"math"
	"sort"
	"time"
)

// Dashboard and instructor analytics are recomputed from the Progress ledger
// on every request; no aggregate is persisted.

type DashboardOverview struct {
	TotalCourses      int `json:"totalCourses"`
	CompletedCourses  int `json:"completedCourses"`
	InProgressCourses int `json:"inProgressCourses"`
	TotalQuizzes      int `json:"totalQuizzes"`
	AverageScore      int `json:"averageScore"`
	TotalTimeSpent    int `json:"totalTimeSpent"` // minutes
}

type RecentCourseActivity struct {
	CourseID             uint      `json:"courseId"`
	CourseTitle          string    `json:"courseTitle"`
	Thumbnail            string    `json:"thumbnail"`
	Category             string    `json:"category"`
	LastAccessed         time.Time `json:"lastAccessed"`
	CompletionPercentage int       `json:"completionPercentage"`
}

type QuizPerformancePoint struct {
	Date   time.Time `json:"date"`
	Score  int       `json:"score"`
	Passed bool      `json:"passed"`
}

type CategoryProgress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
}

type Dashboard struct {
	Overview         DashboardOverview            `json:"overview"`
	RecentActivity   []RecentCourseActivity       `json:"recentActivity"`
	QuizPerformance  []QuizPerformancePoint       `json:"quizPerformance"`
	CategoryProgress map[string]*CategoryProgress `json:"categoryProgress"`
}

// BuildDashboard aggregates a user's Progress records into the student
// dashboard. Progress records must have Course preloaded.
func BuildDashboard(records []Progress) Dashboard {
	totalCourses := len(records)
	completed := 0
	totalQuizzes := 0
	scoreSum := 0
	totalTime := 0
	for _, p := range records {
		if p.IsCompleted {
			completed++
		}
		totalQuizzes += len(p.QuizAttempts)
		scoreSum += p.Performance.AverageQuizScore
		totalTime += p.TotalTimeSpent
	}

	denom := totalCourses
	if denom == 0 {
		denom = 1
	}
	averageScore := int(math.Round(float64(scoreSum) / float64(denom)))

	// 5 most recently accessed courses
	byRecency := append([]Progress(nil), records...)
	sort.Slice(byRecency, func(i, j int) bool {
		return byRecency[i].LastAccessedAt.After(byRecency[j].LastAccessedAt)
	})
	recent := make([]RecentCourseActivity, 0, 5)
	for _, p := range byRecency {
		if len(recent) == 5 {
			break
		}
		entry := RecentCourseActivity{
			CourseID:             p.CourseID,
			LastAccessed:         p.LastAccessedAt,
			CompletionPercentage: p.CompletionPercentage,
		}
		if p.Course != nil {
			entry.CourseTitle = p.Course.Title
			entry.Thumbnail = p.Course.Thumbnail
			entry.Category = p.Course.Category
		}
		recent = append(recent, entry)
	}

	// last 10 quiz attempts, oldest first
	var attempts []QuizPerformancePoint
	for _, p := range records {
		for _, a := range p.QuizAttempts {
			attempts = append(attempts, QuizPerformancePoint{
				Date:   a.AttemptedAt,
				Score:  a.Percentage,
				Passed: a.Passed,
			})
		}
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].Date.Before(attempts[j].Date) })
	if len(attempts) > 10 {
		attempts = attempts[len(attempts)-10:]
	}

	categories := make(map[string]*CategoryProgress)
	for _, p := range records {
		if p.Course == nil {
			continue
		}
		cat := categories[p.Course.Category]
		if cat == nil {
			cat = &CategoryProgress{}
			categories[p.Course.Category] = cat
		}
		cat.Total++
		if p.IsCompleted {
			cat.Completed++
		} else {
			cat.InProgress++
		}
	}

	return Dashboard{
		Overview: DashboardOverview{
			TotalCourses:      totalCourses,
			CompletedCourses:  completed,
			InProgressCourses: totalCourses - completed,
			TotalQuizzes:      totalQuizzes,
			AverageScore:      averageScore,
			TotalTimeSpent:    totalTime,
		},
		RecentActivity:   recent,
		QuizPerformance:  attempts,
		CategoryProgress: categories,
	}
}

type InstructorOverview struct {
	TotalCourses          int `json:"totalCourses"`
	TotalStudents         int `json:"totalStudents"`
	TotalEnrollments      int `json:"totalEnrollments"`
	AverageCompletionRate int `json:"averageCompletionRate"` // percent
	AverageQuizScore      int `json:"averageQuizScore"`
	TotalLearningHours    int `json:"totalLearningHours"`
}

type CourseAnalytics struct {
	CourseID           uint   `json:"courseId"`
	CourseTitle        string `json:"courseTitle"`
	Category           string `json:"category"`
	Level              string `json:"level"`
	EnrolledStudents   int    `json:"enrolledStudents"`
	CompletedStudents  int    `json:"completedStudents"`
	CompletionRate     int    `json:"completionRate"`
	AverageQuizScore   int    `json:"averageQuizScore"`
	TotalLearningHours int    `json:"totalLearningHours"`
	LessonsCount       int    `json:"lessonsCount"`
}

type StudentPerformance struct {
	StudentID             uint      `json:"studentId"`
	StudentName           string    `json:"studentName"`
	StudentEmail          string    `json:"studentEmail"`
	CourseID              uint      `json:"courseId"`
	CourseTitle           string    `json:"courseTitle"`
	CompletionPercentage  int       `json:"completionPercentage"`
	IsCompleted           bool      `json:"isCompleted"`
	AverageQuizScore      int       `json:"averageQuizScore"`
	TotalQuizzesTaken     int       `json:"totalQuizzesTaken"`
	TotalLearningHours    int       `json:"totalLearningHours"`
	LastActivity          time.Time `json:"lastActivity"`
	DaysSinceLastActivity int       `json:"daysSinceLastActivity"`
	EnrolledAt            time.Time `json:"enrolledAt"`
}

type ActivityEntry struct {
	StudentName          string    `json:"studentName"`
	CourseTitle          string    `json:"courseTitle"`
	Activity             string    `json:"activity"` // Completed course, Made progress, Enrolled
	LastAccessed         time.Time `json:"lastAccessed"`
	CompletionPercentage int       `json:"completionPercentage"`
}

type CategoryStats struct {
	TotalCourses          int `json:"totalCourses"`
	TotalStudents         int `json:"totalStudents"`
	AverageCompletionRate int `json:"averageCompletionRate"`
	TotalLearningHours    int `json:"totalLearningHours"`
}

type InstructorAnalytics struct {
	Overview           InstructorOverview        `json:"overview"`
	CourseAnalytics    []CourseAnalytics         `json:"courseAnalytics"`
	StudentPerformance []StudentPerformance      `json:"studentPerformance"`
	RecentActivity     []ActivityEntry           `json:"recentActivity"`
	CategoryBreakdown  map[string]*CategoryStats `json:"categoryBreakdown"`
}

// BuildInstructorAnalytics aggregates every Progress record touching the
// instructor's courses. Records must have User and Course preloaded.
// Completion rate is always completed-over-total Progress records.
func BuildInstructorAnalytics(courses []Course, records []Progress, now time.Time) InstructorAnalytics {
	analytics := InstructorAnalytics{
		CourseAnalytics:    []CourseAnalytics{},
		StudentPerformance: []StudentPerformance{},
		RecentActivity:     []ActivityEntry{},
		CategoryBreakdown:  map[string]*CategoryStats{},
	}
	analytics.Overview.TotalCourses = len(courses)
	if len(courses) == 0 {
		return analytics
	}

	sorted := append([]Progress(nil), records...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastAccessedAt.After(sorted[j].LastAccessedAt)
	})

	students := make(map[uint]struct{})
	completedCount := 0
	totalMinutes := 0
	var allScores []int
	for _, p := range sorted {
		students[p.UserID] = struct{}{}
		if p.IsCompleted {
			completedCount++
		}
		totalMinutes += p.TotalTimeSpent
		for _, a := range p.QuizAttempts {
			allScores = append(allScores, a.Percentage)
		}
	}

	analytics.Overview.TotalStudents = len(students)
	analytics.Overview.TotalEnrollments = len(sorted)
	analytics.Overview.AverageCompletionRate = ratioPercent(completedCount, len(sorted))
	analytics.Overview.AverageQuizScore = meanInt(allScores)
	analytics.Overview.TotalLearningHours = minutesToHours(totalMinutes)

	for _, course := range courses {
		var courseRecords []Progress
		for _, p := range sorted {
			if p.CourseID == course.ID {
				courseRecords = append(courseRecords, p)
			}
		}
		completed := 0
		minutes := 0
		var scores []int
		for _, p := range courseRecords {
			if p.IsCompleted {
				completed++
			}
			minutes += p.TotalTimeSpent
			for _, a := range p.QuizAttempts {
				scores = append(scores, a.Percentage)
			}
		}
		analytics.CourseAnalytics = append(analytics.CourseAnalytics, CourseAnalytics{
			CourseID:           course.ID,
			CourseTitle:        course.Title,
			Category:           course.Category,
			Level:              course.Level,
			EnrolledStudents:   len(courseRecords),
			CompletedStudents:  completed,
			CompletionRate:     ratioPercent(completed, len(courseRecords)),
			AverageQuizScore:   meanInt(scores),
			TotalLearningHours: minutesToHours(minutes),
			LessonsCount:       len(course.Lessons),
		})
	}

	for _, p := range sorted {
		var scores []int
		for _, a := range p.QuizAttempts {
			scores = append(scores, a.Percentage)
		}
		entry := StudentPerformance{
			StudentID:             p.UserID,
			CourseID:              p.CourseID,
			CompletionPercentage:  p.CompletionPercentage,
			IsCompleted:           p.IsCompleted,
			AverageQuizScore:      meanInt(scores),
			TotalQuizzesTaken:     len(p.QuizAttempts),
			TotalLearningHours:    minutesToHours(p.TotalTimeSpent),
			LastActivity:          p.LastAccessedAt,
			DaysSinceLastActivity: int(now.Sub(p.LastAccessedAt).Hours() / 24),
			EnrolledAt:            p.EnrolledAt,
		}
		if p.User != nil {
			entry.StudentName = p.User.FullName()
			entry.StudentEmail = p.User.Email
		}
		if p.Course != nil {
			entry.CourseTitle = p.Course.Title
		}
		analytics.StudentPerformance = append(analytics.StudentPerformance, entry)
	}

	for i, p := range sorted {
		if i == 10 {
			break
		}
		entry := ActivityEntry{
			Activity:             activityLabel(p),
			LastAccessed:         p.LastAccessedAt,
			CompletionPercentage: p.CompletionPercentage,
		}
		if p.User != nil {
			entry.StudentName = p.User.FullName()
		}
		if p.Course != nil {
			entry.CourseTitle = p.Course.Title
		}
		analytics.RecentActivity = append(analytics.RecentActivity, entry)
	}

	for _, course := range courses {
		stats := analytics.CategoryBreakdown[course.Category]
		if stats == nil {
			stats = &CategoryStats{}
			analytics.CategoryBreakdown[course.Category] = stats
		}
		stats.TotalCourses++
	}
	for category, stats := range analytics.CategoryBreakdown {
		catStudents := make(map[uint]struct{})
		completed := 0
		total := 0
		minutes := 0
		for _, p := range sorted {
			if p.Course == nil || p.Course.Category != category {
				continue
			}
			catStudents[p.UserID] = struct{}{}
			total++
			if p.IsCompleted {
				completed++
			}
			minutes += p.TotalTimeSpent
		}
		stats.TotalStudents = len(catStudents)
		stats.AverageCompletionRate = ratioPercent(completed, total)
		stats.TotalLearningHours = minutesToHours(minutes)
	}

	return analytics
}

func activityLabel(p Progress) string {
	switch {
	case p.IsCompleted:
		return "Completed course"
	case p.CompletionPercentage > 0:
		return "Made progress"
	default:
		return "Enrolled"
	}
}

func ratioPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func meanInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

func minutesToHours(minutes int) int {
	return int(math.Round(float64(minutes) / 60))
}
