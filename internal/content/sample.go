// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package content

// SampleItems returns the built-in catalogue indexed when every collection
// of the content store is empty. A fresh slice is returned on each call.
func SampleItems() []Item {
	sample := []struct {
		title, desc string
		topics      []string
	}{
		{"Introduction to Machine Learning", "Learn ML basics", []string{"AI", "Machine Learning"}},
		{"Deep Learning Specialization", "Advanced neural networks", []string{"AI", "Deep Learning"}},
		{"Web Development Bootcamp", "Full stack development", []string{"Web Development", "Full Stack"}},
		{"React Complete Guide", "Master React framework", []string{"Web Development", "React"}},
		{"Data Science with Python", "Python for data analysis", []string{"Data Science", "Python"}},
		{"AWS Cloud Practitioner", "AWS fundamentals", []string{"Cloud", "AWS"}},
		{"Cybersecurity Basics", "Network security essentials", []string{"Cybersecurity"}},
		{"NLP with Transformers", "Natural language processing", []string{"AI", "NLP"}},
		{"Docker and Kubernetes", "Container orchestration", []string{"DevOps", "Cloud"}},
		{"UI/UX Design Principles", "User interface design", []string{"UX/UI", "Design"}},
	}

	items := make([]Item, len(sample))
	for i, s := range sample {
		items[i] = Item{
			Title:       s.title,
			Description: s.desc,
			Tags:        append([]string(nil), s.topics...),
			Category:    "Course",
			ContentType: TypeCourse,
		}
	}
	return items
}
