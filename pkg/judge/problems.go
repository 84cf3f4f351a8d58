package judge

import "strings"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type TestCase struct {
	Input    string
	Expected string
}

// Problem is one coding exercise. Wrappers are keyed by language and contain a
// {code} placeholder where the candidate's source is spliced in.
type Problem struct {
	Title       string
	Description string
	StarterCode map[string]string
	TestCases   []TestCase
	Wrappers    map[string]string
}

// Languages lists the languages the problem ships starter code for, in a stable order.
func (p *Problem) Languages() []string {
	out := make([]string, 0, len(p.StarterCode))
	for _, lang := range languageOrder {
		if _, ok := p.StarterCode[lang]; ok {
			out = append(out, lang)
		}
	}
	return out
}

// Wrap splices code into the language's I/O harness. Unknown languages run the code as is.
func (p *Problem) Wrap(code, language string) string {
	wrapper, ok := p.Wrappers[strings.ToLower(language)]
	if !ok {
		return code
	}
	return strings.ReplaceAll(wrapper, "{code}", code)
}

type topicEntry struct {
	topic   string
	problem *Problem
}

// Bank holds problems by difficulty. Topic order matters: it decides the fallback.
type Bank struct {
	problems map[string][]topicEntry
}

// Find looks a problem up. An unknown difficulty falls back to medium and an
// unknown topic to the first topic registered for the difficulty.
func (b *Bank) Find(difficulty, topic string) (*Problem, bool) {
	entries, ok := b.problems[strings.ToLower(difficulty)]
	if !ok {
		entries = b.problems[DifficultyMedium]
	}
	if len(entries) == 0 {
		return nil, false
	}
	for _, e := range entries {
		if e.topic == strings.ToLower(topic) {
			return e.problem, true
		}
	}
	return entries[0].problem, true
}

func (b *Bank) add(difficulty, topic string, p *Problem) {
	if b.problems == nil {
		b.problems = make(map[string][]topicEntry)
	}
	b.problems[difficulty] = append(b.problems[difficulty], topicEntry{topic: topic, problem: p})
}

// DefaultBank returns the built-in problem set.
func DefaultBank() *Bank {
	b := &Bank{}

	b.add(DifficultyEasy, "arrays", &Problem{
		Title: "Two Sum",
		Description: "Given an array of integers `nums` and an integer `target`, " +
			"return the indices of the two numbers that add up to `target`.\n\n" +
			"You may assume each input has exactly one solution, " +
			"and you may not use the same element twice.\n\n" +
			"Example:\n" +
			"  Input: nums = [2, 7, 11, 15], target = 9\n" +
			"  Output: [0, 1]\n" +
			"  Explanation: nums[0] + nums[1] = 2 + 7 = 9",
		StarterCode: map[string]string{
			"python":     "def two_sum(nums, target):\n    # Write your solution here\n    pass\n",
			"javascript": "function twoSum(nums, target) {\n    // Write your solution here\n}\n",
		},
		TestCases: []TestCase{
			{Input: "2 7 11 15\n9", Expected: "0 1"},
			{Input: "3 2 4\n6", Expected: "1 2"},
			{Input: "3 3\n6", Expected: "0 1"},
		},
		Wrappers: map[string]string{
			"python": "{code}\n\n" +
				"import sys\n" +
				"data = sys.stdin.read().split('\\n')\n" +
				"nums = list(map(int, data[0].split()))\n" +
				"target = int(data[1])\n" +
				"result = two_sum(nums, target)\n" +
				"print(' '.join(map(str, result)))\n",
			"javascript": "{code}\n\n" +
				"const lines = require('fs').readFileSync('/dev/stdin','utf8').trim().split('\\n');\n" +
				"const nums = lines[0].split(' ').map(Number);\n" +
				"const target = parseInt(lines[1]);\n" +
				"const result = twoSum(nums, target);\n" +
				"console.log(result.join(' '));\n",
		},
	})

	b.add(DifficultyEasy, "strings", &Problem{
		Title: "Valid Palindrome",
		Description: "Given a string `s`, determine if it is a palindrome, " +
			"considering only alphanumeric characters and ignoring cases.\n\n" +
			"Example:\n" +
			"  Input: 'A man, a plan, a canal: Panama'\n" +
			"  Output: true",
		StarterCode: map[string]string{
			"python":     "def is_palindrome(s):\n    # Write your solution here\n    pass\n",
			"javascript": "function isPalindrome(s) {\n    // Write your solution here\n}\n",
		},
		TestCases: []TestCase{
			{Input: "A man, a plan, a canal: Panama", Expected: "true"},
			{Input: "race a car", Expected: "false"},
			{Input: " ", Expected: "true"},
		},
		Wrappers: map[string]string{
			"python": "{code}\n\n" +
				"import sys\n" +
				"s = sys.stdin.read().strip()\n" +
				"print(str(is_palindrome(s)).lower())\n",
			"javascript": "{code}\n\n" +
				"const s = require('fs').readFileSync('/dev/stdin','utf8').trim();\n" +
				"console.log(isPalindrome(s));\n",
		},
	})

	b.add(DifficultyMedium, "arrays", &Problem{
		Title: "Maximum Subarray",
		Description: "Given an integer array `nums`, find the subarray with the largest sum " +
			"and return its sum.\n\n" +
			"Example:\n" +
			"  Input: nums = [-2, 1, -3, 4, -1, 2, 1, -5, 4]\n" +
			"  Output: 6\n" +
			"  Explanation: The subarray [4, -1, 2, 1] has the largest sum = 6.",
		StarterCode: map[string]string{
			"python":     "def max_subarray(nums):\n    # Write your solution here\n    pass\n",
			"javascript": "function maxSubArray(nums) {\n    // Write your solution here\n}\n",
		},
		TestCases: []TestCase{
			{Input: "-2 1 -3 4 -1 2 1 -5 4", Expected: "6"},
			{Input: "1", Expected: "1"},
			{Input: "5 4 -1 7 8", Expected: "23"},
		},
		Wrappers: map[string]string{
			"python": "{code}\n\n" +
				"import sys\n" +
				"nums = list(map(int, sys.stdin.read().strip().split()))\n" +
				"print(max_subarray(nums))\n",
			"javascript": "{code}\n\n" +
				"const nums = require('fs').readFileSync('/dev/stdin','utf8').trim().split(' ').map(Number);\n" +
				"console.log(maxSubArray(nums));\n",
		},
	})

	b.add(DifficultyMedium, "strings", &Problem{
		Title: "Longest Substring Without Repeating Characters",
		Description: "Given a string `s`, find the length of the longest substring " +
			"without repeating characters.\n\n" +
			"Example:\n" +
			"  Input: 'abcabcbb'\n" +
			"  Output: 3\n" +
			"  Explanation: The answer is 'abc', with length 3.",
		StarterCode: map[string]string{
			"python":     "def length_of_longest_substring(s):\n    # Write your solution here\n    pass\n",
			"javascript": "function lengthOfLongestSubstring(s) {\n    // Write your solution here\n}\n",
		},
		TestCases: []TestCase{
			{Input: "abcabcbb", Expected: "3"},
			{Input: "bbbbb", Expected: "1"},
			{Input: "pwwkew", Expected: "3"},
		},
		Wrappers: map[string]string{
			"python": "{code}\n\n" +
				"import sys\n" +
				"s = sys.stdin.read().strip()\n" +
				"print(length_of_longest_substring(s))\n",
			"javascript": "{code}\n\n" +
				"const s = require('fs').readFileSync('/dev/stdin','utf8').trim();\n" +
				"console.log(lengthOfLongestSubstring(s));\n",
		},
	})

	b.add(DifficultyHard, "arrays", &Problem{
		Title: "Merge K Sorted Lists (Array Version)",
		Description: "Given k sorted arrays, merge them into one sorted array.\n\n" +
			"Example:\n" +
			"  Input: [[1,4,5],[1,3,4],[2,6]]\n" +
			"  Output: [1,1,2,3,4,4,5,6]",
		StarterCode: map[string]string{
			"python": "def merge_k_sorted(arrays):\n    # Write your solution here\n    pass\n",
		},
		TestCases: []TestCase{
			{Input: "1,4,5;1,3,4;2,6", Expected: "1 1 2 3 4 4 5 6"},
			{Input: "", Expected: ""},
			{Input: "1", Expected: "1"},
		},
		Wrappers: map[string]string{
			"python": "{code}\n\n" +
				"import sys\n" +
				"raw = sys.stdin.read().strip()\n" +
				"if not raw:\n" +
				"    print('')\n" +
				"else:\n" +
				"    arrays = [list(map(int, g.split(','))) for g in raw.split(';') if g]\n" +
				"    result = merge_k_sorted(arrays)\n" +
				"    print(' '.join(map(str, result)))\n",
		},
	})

	return b
}
