package app

// baseLatexTemplate is the single-page resume layout the generator fills
// in. Placeholders use {{NAME}} markers; the model replaces every one of
// them, so the template never reaches the compiler as-is.
const baseLatexTemplate = `%----------------------------------------------------------------------------------------
%	DOCUMENT DEFINITION
%----------------------------------------------------------------------------------------
\documentclass[a4paper,8pt]{extarticle}

%----------------------------------------------------------------------------------------
%	FONT
%----------------------------------------------------------------------------------------
\usepackage{helvet}
\renewcommand{\familydefault}{\sfdefault}

%----------------------------------------------------------------------------------------
%	PACKAGES
%----------------------------------------------------------------------------------------
\usepackage{url}
\usepackage{parskip}
\setlength{\parskip}{0pt}

\usepackage{color}
\usepackage{graphicx}
\usepackage[usenames,dvipsnames]{xcolor}
\usepackage[margin=0.5in]{geometry}

\usepackage{tabularx}
\usepackage{enumitem}
\setlist{nosep,leftmargin=1em,itemsep=2pt}
\newcolumntype{C}{>{\centering\arraybackslash}X}

\usepackage{titlesec}
\usepackage{multicol}
\usepackage{multirow}

\titleformat{\section}{\large\scshape\raggedright}{}{0em}{}[\titlerule]
\titlespacing{\section}{0pt}{4pt}{4pt}

\usepackage[unicode, draft=false]{hyperref}
\definecolor{linkcolour}{rgb}{0,0.2,0.6}
\hypersetup{colorlinks,breaklinks,urlcolor=linkcolour,linkcolor=linkcolour}

\usepackage{fontawesome5}

\begin{document}
\pagestyle{empty}

\begin{tabularx}{\linewidth}{@{} C @{}}
\Huge{\textbf{ {{NAME}} }} \\[5.5pt]
\href{ {{GITHUB_URL}} }{\raisebox{-0.02\height}\faGithub\ GitHub} $|$
\href{ {{LINKEDIN_URL}} }{\raisebox{-0.02\height}\faLinkedin\ LinkedIn} $|$
\href{ {{PORTFOLIO_URL}} }{\raisebox{-0.02\height}\faGlobe\ Portfolio} $|$
\href{mailto:{{EMAIL}}}{\raisebox{-0.02\height}\faEnvelope\ {{EMAIL}}} $|$
\href{tel:{{PHONE_NUMBER}}}{\raisebox{-0.05\height}\faMobile\ {{PHONE_NUMBER}}} \\
\end{tabularx}

\section{Professional Summary}
{{PROFESSIONAL_SUMMARY_TEXT}}

\section{Work Experience}

\begin{tabularx}{\linewidth}{ @{}l r@{} }
\textbf{ {{JOB_TITLE_1}} ({{COMPANY_NAME_1}}) } & \hfill {{START_DATE_1}} -- {{END_DATE_1}} \\[3pt]
\multicolumn{2}{@{}X@{}}{
\begin{minipage}[t]{\linewidth}
\begin{itemize}
  \item[--] {{BULLET_POINT_1_1}}
  \item[--] {{BULLET_POINT_1_2}}
  \item[--] {{BULLET_POINT_1_3}}
\end{itemize}
\end{minipage}
}
\end{tabularx}

\begin{tabularx}{\linewidth}{ @{}l r@{} }
\textbf{ {{JOB_TITLE_2}} ({{COMPANY_NAME_2}}) } & \hfill {{START_DATE_2}} -- {{END_DATE_2}} \\[3pt]
\multicolumn{2}{@{}X@{}}{
\begin{minipage}[t]{\linewidth}
\begin{itemize}
  \item[--] {{BULLET_POINT_2_1}}
  \item[--] {{BULLET_POINT_2_2}}
\end{itemize}
\end{minipage}
}
\end{tabularx}

\begin{tabularx}{\linewidth}{ @{}l r@{} }
\textbf{ {{JOB_TITLE_3}} ({{COMPANY_NAME_3}}) } & \hfill {{START_DATE_3}} -- {{END_DATE_3}} \\[3pt]
\multicolumn{2}{@{}X@{}}{
\begin{minipage}[t]{\linewidth}
\begin{itemize}
  \item[--] {{BULLET_POINT_3_1}}
  \item[--] {{BULLET_POINT_3_2}}
\end{itemize}
\end{minipage}
}
\end{tabularx}

\section{Projects}
\begin{tabularx}{\linewidth}{@{}l r@{}}
\textbf{ {{PROJECT_NAME_1}} ({{TECH_STACK_1}}) } & \hfill \href{ {{PROJECT_URL_1}} }{View Demo} \\[3pt]
\multicolumn{2}{@{}X@{}}{
\begin{minipage}[t]{\linewidth}
\begin{itemize}
  \item[--] {{PROJECT_DESCRIPTION_POINT_1_1}}
  \item[--] {{PROJECT_DESCRIPTION_POINT_1_2}}
\end{itemize}
\end{minipage}
}
\end{tabularx}

\begin{tabularx}{\linewidth}{@{}l r@{}}
\textbf{ {{PROJECT_NAME_2}} ({{TECH_STACK_2}}) } & \hfill \href{ {{PROJECT_URL_2}} }{View Demo} \\[3pt]
\multicolumn{2}{@{}X@{}}{
\begin{minipage}[t]{\linewidth}
\begin{itemize}
  \item[--] {{PROJECT_DESCRIPTION_POINT_2_1}}
  \item[--] {{PROJECT_DESCRIPTION_POINT_2_2}}
\end{itemize}
\end{minipage}
}
\end{tabularx}

\section{Education}
\begin{tabularx}{\linewidth}{@{}l X@{}}
{{START_YEAR}} -- {{END_YEAR}} & \textbf{ {{DEGREE_NAME}} }, {{UNIVERSITY_NAME}} \\
\end{tabularx}

\section{Certifications}
\begin{tabularx}{\linewidth}{@{}l X l@{}}
\textbf{ {{CERTIFICATE_1}} } & & \textbf{ {{CERTIFICATE_2}} } \\
\textbf{ {{CERTIFICATE_3}} } & & \textbf{ {{CERTIFICATE_4}} } \\
\end{tabularx}

\section{Technical Skills}
\begin{tabularx}{\linewidth}{@{}l X@{}}
\textbf{ {{SKILL_CATEGORY_1}}: } & {{SKILL_LIST_1}} \\
\textbf{ {{SKILL_CATEGORY_2}}: } & {{SKILL_LIST_2}} \\
\textbf{ {{SKILL_CATEGORY_3}}: } & {{SKILL_LIST_3}} \\
\textbf{ {{SKILL_CATEGORY_4}}: } & {{SKILL_LIST_4}} \\
\end{tabularx}

\vfill
\end{document}`
