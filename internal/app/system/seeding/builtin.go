// internal/app/system/seeding/builtin.go
package seeding

import "github.com/dalemusser/folio/internal/domain/models"

// builtinSiteConfig is the site configuration written when the config
// document is first found missing on the server.
func builtinSiteConfig() models.SiteConfig {
	return models.SiteConfig{
		Name:             "Phyo Min Thein",
		Tagline:          "Leo",
		Bio:              "Software Engineering student with expertise in full-stack development, and DevOps. Delivering innovative solutions through modern technology stacks.",
		AboutTitle:       "Hi, I'm Phyo Min Thein",
		AboutMe:          "I'm a passionate full-stack developer who loves building elegant, user-centered digital experiences. With expertise spanning web and mobile development, I craft solutions that combine technical excellence with beautiful design.",
		Email:            "phyominthein.dev@gmail.com",
		Phone:            "+66 XX XXX XXXX",
		Location:         "Thailand 🇹🇭",
		AvailableForWork: true,
		HeroTitle:        "Full-Stack Developer",
		GitHub:           "https://github.com/kweephyo-pmt",
		LinkedIn:         "https://linkedin.com/in/phyominthein",
		AccentColor:      models.DefaultAccentColor,
		Theme:            models.ThemeDark,
	}
}

func builtinProjects() []models.Project {
	return []models.Project{
		{
			ID:           "newlife",
			Title:        "NewLife - AI-Powered Travel Companion",
			Tech:         "React, TypeScript, AI Integration, Real-time APIs",
			Technologies: []string{"React", "TypeScript", "AI/ML", "Real-time APIs", "Weather API", "Maps Integration", "Social Features"},
			Desc:         "Comprehensive AI-powered travel planning platform that revolutionizes trip organization. Features intelligent itinerary generation, real-time updates based on weather and traffic, vibrant community engagement, and seamless travel experience management.",
			URL:          "https://new-life-ai.vercel.app/",
			GitHubURL:    "https://github.com/kweephyo-pmt/new_life",
			Category:     models.CategoryWeb,
			Year:         "2025",
			Image:        "https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=800&q=80",
			Featured:     true,
			Order:        1,
			Features:     []string{
				"AI-powered real-time itinerary planning with intelligent suggestions and personalized recommendations",
				"Smart trip updates that automatically adjust plans based on weather conditions, traffic, and local events",
				"Vibrant travel community platform with post creation, reactions, comments, and experience sharing",
				"Comprehensive trip management system for both weekend getaways and international journeys",
				"Modern TypeScript architecture with responsive design for seamless mobile and desktop experiences",
				"Integration with multiple APIs for weather forecasting, maps, and real-time travel information",
			},
		},
		{
			ID:           "trackpoint",
			Title:        "TrackPoint - Professional Attendance Tracking",
			Tech:         "React, TypeScript, Supabase, Facial Recognition",
			Technologies: []string{"React", "TypeScript", "Supabase", "Facial Recognition", "Location Services", "Real-time Analytics"},
			Desc:         "A comprehensive, modern attendance tracking application built with React, TypeScript, and Supabase. Features advanced facial recognition, location-based restrictions, real-time analytics, and a complete admin management system.",
			URL:          "https://trackpoint-attendance.vercel.app/",
			GitHubURL:    "https://github.com/kweephyo-pmt/TrackPoint",
			Category:     models.CategoryWeb,
			Year:         "2025",
			Image:        "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=800&q=80",
			Featured:     true,
			Order:        2,
			Features:     []string{
				"Advanced facial recognition technology for secure and accurate attendance tracking",
				"Location-based restrictions ensuring attendance can only be marked from designated areas",
				"Real-time analytics dashboard with comprehensive reporting and data visualization",
				"Complete admin management system with user roles, permissions, and attendance oversight",
				"Modern TypeScript architecture with Supabase backend for scalable data management",
				"Responsive design optimized for both desktop and mobile attendance marking",
			},
		},
		{
			ID:           "weflix",
			Title:        "WeFlix Movie Streaming Platform",
			Tech:         "React, JavaScript, CSS, Movie API",
			Technologies: []string{"React", "JavaScript", "CSS", "Movie API"},
			Desc:         "Modern movie streaming platform with comprehensive movie database integration. Features advanced search functionality, detailed movie information, responsive design, and intuitive user interface for seamless movie discovery.",
			URL:          "https://weflixmovie.netlify.app/",
			GitHubURL:    "https://github.com/kweephyo-pmt/WeFlix",
			Category:     models.CategoryWeb,
			Year:         "2025",
			Image:        "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=800&q=80",
			Featured:     false,
			Order:        3,
			Features:     []string{
				"Comprehensive movie database integration with real-time search and filtering capabilities",
				"Responsive design architecture optimized for desktop, tablet, and mobile viewing experiences",
				"Interactive movie details with ratings, cast information, and trailer integration",
				"Modern UI/UX design with smooth animations and intuitive navigation system",
			},
		},
		{
			ID:           "linkclub",
			Title:        "LinkClub Real-Time Chat Application",
			Tech:         "React, MERN Stack, Socket.io, JWT, Stream.io",
			Technologies: []string{"React", "Node.js", "Express.js", "MongoDB", "Socket.io", "JWT", "Cloudinary", "TailwindCSS", "DaisyUI", "Zustand"},
			Desc:         "Modern, full-stack real-time chat application built with the MERN stack, featuring instant messaging and comprehensive user management. Implements Socket.io for real-time bidirectional communication.",
			URL:          "https://linkclub.netlify.app/",
			GitHubURL:    "https://github.com/kweephyo-pmt/linkclub",
			Category:     models.CategoryWeb,
			Year:         "2025",
			Image:        "https://images.unsplash.com/photo-1611746872915-64382b5c76da?w=800&q=80",
			Featured:     true,
			Order:        4,
			Features:     []string{
				"Real-time bidirectional communication using Socket.io with instant message delivery and typing indicators",
				"Comprehensive user authentication system with JWT tokens and bcryptjs password hashing for security",
				"Modern React 18 frontend with Vite build tool, TailwindCSS styling, and DaisyUI components",
				"Full-stack MERN architecture with Express.js API, MongoDB database, and Cloudinary image upload integration",
			},
		},
		{
			ID:           "curriculum",
			Title:        "Curriculum Statistics Website",
			Tech:         "Vue.js, Chart.js, Node.js, MySQL, Firebase, GCP",
			Technologies: []string{"Vue.js", "Chart.js", "Node.js", "MySQL", "Firebase", "GCP"},
			Desc:         "Enterprise-level data visualization platform developed for Mae Fah Luang University's School of Management. Features comprehensive academic analytics with interactive dashboards and real-time data processing.",
			URL:          "https://app.som-bi.work.gd/",
			GitHubURL:    "https://github.com/kweephyo-pmt/senior_project",
			Category:     models.CategoryWeb,
			Year:         "2025",
			Image:        "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=800&q=80",
			Featured:     false,
			Order:        5,
			Features:     []string{
				"Advanced data visualization using Chart.js with dynamic filtering and export capabilities",
				"Scalable backend architecture with MySQL database and Firebase integration",
				"Responsive web design with cross-browser compatibility and mobile optimization",
				"Secure authentication system with multi-level user permissions and data protection",
			},
		},
		{
			ID:           "cafez",
			Title:        "CafeZ Mobile App",
			Tech:         "Flutter, Firebase",
			Technologies: []string{"Flutter", "Firebase"},
			Desc:         "Cross-platform mobile application for streamlined cafe operations and customer engagement. Implemented secure payment processing, real-time order management, and comprehensive business analytics.",
			URL:          "https://play.google.com/store/apps/details?id=com.cafez.app&hl=en",
			GitHubURL:    "https://github.com/kweephyo-pmt/cafe_z",
			Category:     models.CategoryMobile,
			Year:         "2024",
			Image:        "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=800&q=80",
			Featured:     false,
			Order:        6,
			Features:     []string{
				"Intuitive mobile interface with seamless ordering workflow and integrated payment gateway",
				"Cross-platform development using Flutter framework for iOS and Android deployment",
				"Cloud-based backend infrastructure with Firebase for real-time synchronization and secure user management",
			},
		},
		{
			ID:           "portfolio",
			Title:        "Personal Portfolio Website",
			Tech:         "React, Tailwind CSS, Framer Motion, Vite",
			Technologies: []string{"React", "Tailwind CSS", "Framer Motion", "Vite"},
			Desc:         "Professional portfolio website demonstrating full-stack development capabilities and project management skills. Features performance-optimized architecture, modern UI/UX design principles, and comprehensive project documentation.",
			URL:          "https://phyominthein.com/",
			GitHubURL:    "https://github.com/kweephyo-pmt/phyominthein-portfolio",
			Category:     models.CategoryWeb,
			Year:         "2025",
			Image:        "https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?w=800&q=80",
			Featured:     false,
			Order:        7,
			Features:     []string{
				"Responsive design architecture with performance-optimized animations and micro-interactions",
				"Modern build pipeline using Vite for fast development and optimized production builds",
				"Interactive project galleries with live deployment links and comprehensive documentation",
				"Accessible design with dark/light theme support and professional typography system",
			},
		},
		{
			ID:           "reclaimify",
			Title:        "Reclaimify Lost & Found App",
			Tech:         "Flutter, Firebase, GoogleMaps API",
			Technologies: []string{"Flutter", "Firebase", "Google Maps API"},
			Desc:         "Comprehensive lost-and-found management system with geolocation services and intelligent matching algorithms. Features advanced search capabilities, automated notifications, and community-driven item recovery platform.",
			URL:          "https://github.com/kweephyo-pmt/lost_found",
			GitHubURL:    "https://github.com/kweephyo-pmt/lost_found",
			Category:     models.CategoryMobile,
			Year:         "2023",
			Image:        "https://images.unsplash.com/photo-1505409628601-edc9af17fda6?w=800&q=80",
			Featured:     false,
			Order:        8,
			Features:     []string{
				"Geospatial mapping integration with Google Maps API for precise location tracking",
				"Advanced image processing and machine learning for item categorization and matching",
				"Push notification system with intelligent matching algorithms for item recovery",
				"Responsive user interface with accessibility features and multilingual support",
			},
		},
	}
}

func builtinSkills() []models.Skill {
	return []models.Skill{
		{ID: "react", Name: "React", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/react/react-original.svg"},
		{ID: "nextjs", Name: "Next.js", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/nextjs/nextjs-original.svg"},
		{ID: "nodejs", Name: "Node.js", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/nodejs/nodejs-original.svg"},
		{ID: "cpp", Name: "C++", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/cplusplus/cplusplus-original.svg"},
		{ID: "java", Name: "Java", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/java/java-original.svg"},
		{ID: "python", Name: "Python", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/python/python-original.svg"},
		{ID: "javascript", Name: "JavaScript", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/javascript/javascript-plain.svg"},
		{ID: "git", Name: "Git", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/git/git-original.svg"},
		{ID: "typescript", Name: "TypeScript", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/typescript/typescript-original.svg"},
		{ID: "mongodb", Name: "MongoDB", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/mongodb/mongodb-original.svg"},
		{ID: "mysql", Name: "MySQL", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/mysql/mysql-original.svg"},
		{ID: "firebase", Name: "Firebase", Icon: "https://cdn.jsdelivr.net/gh/devicons/devicon@latest/icons/firebase/firebase-plain.svg"},
	}
}

func builtinExperiences() []models.Experience {
	return []models.Experience{
		{
			ID:           "exp1",
			Company:      "Mae Fah Luang University",
			Role:         "Full-Stack Developer (Senior Project)",
			Period:       "2024 – 2025",
			Location:     "Chiang Rai, Thailand",
			Description:  "Developed an enterprise-level curriculum statistics platform for the School of Management, featuring advanced data visualization, role-based access control, and real-time analytics dashboards serving university administrators and faculty.",
			Technologies: []string{"Vue.js", "Chart.js", "Node.js", "MySQL", "Firebase", "GCP"},
			Type:         models.ExperienceWork,
		},
		{
			ID:           "exp2",
			Company:      "Freelance",
			Role:         "Mobile App Developer",
			Period:       "2023 – 2024",
			Location:     "Remote",
			Description:  "Built cross-platform mobile applications using Flutter and Firebase for various clients. Delivered production-ready apps including a cafe management system (CafeZ) published on Google Play Store.",
			Technologies: []string{"Flutter", "Firebase", "Dart", "Google Maps API"},
			Type:         models.ExperienceFreelance,
		},
		{
			ID:           "exp3",
			Company:      "Personal Projects",
			Role:         "Full-Stack Developer",
			Period:       "2023 – Present",
			Location:     "Remote",
			Description:  "Continuously building and deploying modern web and mobile applications, exploring cutting-edge technologies including AI integration, real-time communication, and facial recognition systems.",
			Technologies: []string{"React", "TypeScript", "Supabase", "Socket.io", "AI/ML"},
			Type:         models.ExperienceWork,
		},
	}
}

func builtinCertificates() []models.Certificate {
	return []models.Certificate{
		{
			ID:          "cert1",
			Title:       "IBM FullStack Software Developer",
			Issuer:      "IBM",
			Date:        "2025",
			ImageURL:    "https://images.unsplash.com/photo-1517694712202-14dd9538aa97?w=800&q=80",
			Description: "Professional certification in full-stack software development covering both frontend and backend technologies",
			Link:        "https://coursera.org/share/40b4858ad6371b82352207c45d2860c3",
			Order:       1,
		},
		{
			ID:          "cert2",
			Title:       "Foundation of Digital Marketing & E-Commerce",
			Issuer:      "Google",
			Date:        "2025",
			ImageURL:    "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=800&q=80",
			Description: "Google certification covering digital marketing fundamentals and e-commerce strategies",
			Link:        "https://coursera.org/share/89ab619cbadf335ba8d8bc3a7f4b688b",
			Order:       2,
		},
		{
			ID:          "cert3",
			Title:       "Google AI Essentials",
			Issuer:      "Google",
			Date:        "2025",
			ImageURL:    "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800&q=80",
			Description: "Essential certification in artificial intelligence concepts and Google AI tools",
			Link:        "https://coursera.org/share/6a8123f02bb4ba5578285fd82e580839",
			Order:       3,
		},
	}
}
