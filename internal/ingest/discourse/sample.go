package discourse

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

// SeedSampleData inserts a small set of demonstration lessons and discussion
// posts, enough to exercise search and answering on a fresh database.
// Re-running replaces the same URLs.
func SeedSampleData(ctx context.Context, saver DocumentSaver) error {
	lessons := []domain.Lesson{
		{
			Title: "Introduction to Python for Data Science",
			Content: "Python is a versatile programming language that's particularly well-suited for " +
				"data science. In this lesson, we'll cover the basics of Python syntax, data types, and " +
				"control structures. We'll also introduce key libraries like NumPy, Pandas, and Matplotlib " +
				"that are essential for data analysis and visualization.",
			URL:  "https://course.example.com/python-intro",
			Kind: "lesson",
		},
		{
			Title: "Working with Pandas DataFrames",
			Content: "Pandas is a powerful library for data manipulation and analysis. DataFrames are " +
				"the primary data structure in Pandas, allowing you to work with structured data " +
				"efficiently. Learn how to create, manipulate, and analyze data using DataFrame " +
				"operations, including filtering, grouping, and aggregation.",
			URL:  "https://course.example.com/pandas-dataframes",
			Kind: "lesson",
		},
		{
			Title: "Data Visualization with Matplotlib and Seaborn",
			Content: "Effective data visualization is crucial for understanding and communicating " +
				"insights from data. This lesson covers creating various types of plots using Matplotlib " +
				"and Seaborn, including line plots, bar charts, histograms, and scatter plots. We'll also " +
				"discuss best practices for creating clear and informative visualizations.",
			URL:  "https://course.example.com/data-visualization",
			Kind: "lesson",
		},
	}

	posts := []domain.DiscussionPost{
		{
			Title: "GPT Model Selection for Assignment",
			Content: "When working with GPT models for assignments, it's important to use the exact " +
				"model specified in the instructions. Even if AI proxies support newer models like " +
				"gpt-4o-mini, you should use gpt-3.5-turbo-0125 if that's what's specified in the " +
				"assignment. This ensures consistency and fairness in grading.",
			URL:       "https://discourse.onlinedegree.iitm.ac.in/t/gpt-model-selection/12345",
			Author:    "teaching_assistant",
			Category:  "assignments",
			CreatedAt: time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			Title: "Handling Missing Values in Pandas",
			Content: "There are several ways to handle missing values in Pandas DataFrames. You can use " +
				"dropna() to remove rows with missing values, fillna() to fill missing values with a " +
				"specific value or method, or isnull() to identify missing values. The best approach " +
				"depends on your specific use case and the nature of your data.",
			URL:       "https://discourse.onlinedegree.iitm.ac.in/t/missing-values-pandas/12346",
			Author:    "student_helper",
			Category:  "data-science",
			CreatedAt: time.Date(2025, 3, 10, 14, 45, 0, 0, time.UTC),
		},
		{
			Title: "Cross-validation Best Practices",
			Content: "Cross-validation is essential for evaluating machine learning models. Use " +
				"stratified k-fold for classification problems to maintain class distribution, and time " +
				"series split for temporal data. Always ensure that data preprocessing steps are applied " +
				"within each fold to prevent data leakage. scikit-learn provides excellent tools for " +
				"cross-validation.",
			URL:       "https://discourse.onlinedegree.iitm.ac.in/t/cross-validation-practices/12347",
			Author:    "course_instructor",
			Category:  "machine-learning",
			CreatedAt: time.Date(2025, 3, 8, 9, 15, 0, 0, time.UTC),
		},
	}

	for _, l := range lessons {
		if _, err := saver.SaveLesson(ctx, l); err != nil {
			return fmt.Errorf("seed lesson %s: %w", l.URL, err)
		}
	}
	for _, p := range posts {
		if _, err := saver.SavePost(ctx, p); err != nil {
			return fmt.Errorf("seed post %s: %w", p.URL, err)
		}
	}
	return nil
}
