package service

import "proxedu/pkg/models"

var demoCourses = []models.Course{
	{
		Title:            "JavaScript asoslari",
		Description:      "Zamonaviy JavaScript dasturlash asoslari. ES6+ xususiyatlari, DOM manipulyatsiyasi va asosiy dasturlash tushunchalari.",
		Instructor:       "Aziz Karimov",
		Price:            500000,
		Duration:         "8 hafta",
		Level:            models.LevelBeginner,
		Status:           models.CourseStatusActive,
		EnrolledStudents: 45,
		Rating:           4.8,
		TotalRatings:     23,
		Category:         "Dasturlash",
		Tags:             []string{"JavaScript", "Web", "Frontend"},
	},
	{
		Title:            "React.js to'liq kursi",
		Description:      "React.js framework bo'yicha to'liq kurs. Hooks, Context API, Redux va real loyihalar orqali o'rganish.",
		Instructor:       "Malika Yusupova",
		Price:            800000,
		Duration:         "12 hafta",
		Level:            models.LevelIntermediate,
		Status:           models.CourseStatusActive,
		EnrolledStudents: 32,
		Rating:           4.9,
		TotalRatings:     18,
		Category:         "Frontend",
		Tags:             []string{"React", "JavaScript", "Frontend"},
	},
	{
		Title:            "Go va PostgreSQL",
		Description:      "Backend dasturlash asoslari. Go, PostgreSQL, Redis va REST API yaratish.",
		Instructor:       "Jasur Toshmatov",
		Price:            700000,
		Duration:         "10 hafta",
		Level:            models.LevelIntermediate,
		Status:           models.CourseStatusActive,
		EnrolledStudents: 28,
		Rating:           4.7,
		TotalRatings:     15,
		Category:         "Backend",
		Tags:             []string{"Go", "PostgreSQL", "Backend"},
	},
	{
		Title:            "Python dasturlash",
		Description:      "Python dasturlash tili asoslari. Ma'lumotlar tuzilmalari, OOP va amaliy loyihalar.",
		Instructor:       "Dilfuza Rahimova",
		Price:            600000,
		Duration:         "10 hafta",
		Level:            models.LevelBeginner,
		Status:           models.CourseStatusActive,
		EnrolledStudents: 38,
		Rating:           4.6,
		TotalRatings:     20,
		Category:         "Dasturlash",
		Tags:             []string{"Python", "OOP", "Algoritmlar"},
	},
	{
		Title:            "Vue.js 3 va Composition API",
		Description:      "Vue.js 3 framework va Composition API bo'yicha zamonaviy frontend dasturlash.",
		Instructor:       "Shahzod Mirzaev",
		Price:            750000,
		Duration:         "10 hafta",
		Level:            models.LevelIntermediate,
		Status:           models.CourseStatusActive,
		EnrolledStudents: 25,
		Rating:           4.8,
		TotalRatings:     12,
		Category:         "Frontend",
		Tags:             []string{"Vue.js", "JavaScript", "Frontend"},
	},
	{
		Title:            "TypeScript to'liq kursi",
		Description:      "TypeScript dasturlash tili. Type safety, interfaces, generics va enterprise dasturlash.",
		Instructor:       "Aziz Karimov",
		Price:            650000,
		Duration:         "8 hafta",
		Level:            models.LevelAdvanced,
		Status:           models.CourseStatusActive,
		EnrolledStudents: 20,
		Rating:           4.9,
		TotalRatings:     10,
		Category:         "Dasturlash",
		Tags:             []string{"TypeScript", "JavaScript", "Enterprise"},
	},
}
