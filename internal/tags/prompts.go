package tags

// UnifyPrompt is the prompt template for tag unification. The only slot is
// the comma separated tag list.
const UnifyPrompt = `I will give you a list of tags. You need to unify tags with the following requirements,
1. Tags are unified and merged to create a shorter list.
   Example 1: "Jobseekers", "Job Hunting" can be all merged into a single tag "Job Search".
   Example 2: "Motivation", "Inspiration", "Drive" can be mapped to "Motivation"
   Example 3: "Personal Growth", "Personal Development", "Self Improvement" can be mapped to "Self Improvement"
   Example 4: "Scam Alert", "Job Scam" etc. can be mapped to "Scams"
2. Each tag should follow title case convention. example: "Motivation", "Job Search"
3. Output should be a JSON object, No preamble
4. Output should have mapping of original tag and the unified tag.
   For example: {"Jobseekers": "Job Search", "Job Hunting": "Job Search", "Motivation": "Motivation"}

Here is the list of tags:
%s`
