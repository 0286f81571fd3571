package student

// SampleRoster returns the built-in demo roster used to initialize a
// never-written installation. Always returns fresh copies.
func SampleRoster() []Student {
	return []Student{
		{
			ID:          1,
			Name:        "John Doe",
			Email:       "john.doe@example.com",
			Grade:       Grade10th,
			DateOfBirth: "2008-03-15",
			Performance: Performance{
				SubjectMath:    {85, 92, 78, 88, 95},
				SubjectScience: {90, 85, 92, 87, 89},
				SubjectEnglish: {88, 90, 85, 92, 88},
				SubjectHistory: {82, 88, 90, 85, 87},
			},
			Attendance:  95,
			LastUpdated: "2024-01-15",
		},
		{
			ID:          2,
			Name:        "Jane Smith",
			Email:       "jane.smith@example.com",
			Grade:       Grade11th,
			DateOfBirth: "2007-07-22",
			Performance: Performance{
				SubjectMath:    {92, 88, 95, 90, 87},
				SubjectScience: {85, 90, 88, 92, 85},
				SubjectEnglish: {95, 92, 88, 90, 93},
				SubjectHistory: {88, 85, 92, 87, 90},
			},
			Attendance:  98,
			LastUpdated: "2024-01-15",
		},
		{
			ID:          3,
			Name:        "Mike Johnson",
			Email:       "mike.johnson@example.com",
			Grade:       Grade9th,
			DateOfBirth: "2009-11-08",
			Performance: Performance{
				SubjectMath:    {75, 82, 78, 85, 80},
				SubjectScience: {80, 85, 78, 82, 85},
				SubjectEnglish: {85, 80, 88, 82, 85},
				SubjectHistory: {78, 82, 85, 80, 83},
			},
			Attendance:  92,
			LastUpdated: "2024-01-15",
		},
	}
}
